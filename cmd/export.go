package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/nikogura/cv-builder/pkg/export"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var exportTemplate string

//nolint:gochecknoglobals // Cobra boilerplate
var exportLang string

//nolint:gochecknoglobals // Cobra boilerplate
var exportOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var exportVerify bool

//nolint:gochecknoglobals // Cobra boilerplate
var exportCmd = &cobra.Command{
	Use:   "export <profile-file>",
	Short: "Export a profile to PDF",
	Long: `Render a profile file (JSON or YAML) and export it to PDF with a headless
browser. The file is named after the profile name, or CV.pdf when the name is empty.

Use --verify to read the PDF back and check every non-empty field made it in.

Example:
  cv-builder export profile.yaml
  cv-builder export profile.yaml --template modern --lang en --output-dir ~/Documents --verify`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportTemplate, "template", "", "Template id (default from config)")
	exportCmd.Flags().StringVar(&exportLang, "lang", "", "Language: ar or en (default from config)")
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "Output directory (default from config)")
	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "Check the exported PDF contains every non-empty field")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	var registry *render.Registry
	registry, err = newRegistry(cfg)
	if err != nil {
		return err
	}

	var store *profile.Store
	store, err = loadStore(args[0], exportLang, exportTemplate, cfg)
	if err != nil {
		return err
	}

	var doc render.Document
	doc, err = renderStore(registry, store)
	if err != nil {
		return err
	}

	outDir := exportOutputDir
	if outDir == "" {
		outDir = cfg.Export.OutputDir
	}

	if getVerbose() {
		fmt.Println("Rendering PDF...")
	}

	p := store.Snapshot().Profile
	exporter := export.NewExporter(export.NewPlaywrightRasterizer(), cfg.Margin(), outDir)

	var path string
	path, err = exporter.ExportToDocument(ctx, doc, p.Name)
	if err != nil {
		return err
	}

	fmt.Printf("CV PDF saved at: %s\n", path)

	if !exportVerify {
		return err
	}

	err = verifyExport(path, p)
	return err
}

func verifyExport(path string, p profile.Profile) (err error) {
	var missing []profile.Field
	missing, err = export.Verify(path, p)
	if err != nil {
		return err
	}

	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		err = errors.Errorf("exported PDF is missing fields: %s", strings.Join(names, ", "))
		return err
	}

	if getVerbose() {
		fmt.Println("Verified: all fields present in PDF")
	}

	return err
}
