package cmd

import (
	"fmt"
	"os"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var renderTemplate string

//nolint:gochecknoglobals // Cobra boilerplate
var renderLang string

//nolint:gochecknoglobals // Cobra boilerplate
var renderOut string

//nolint:gochecknoglobals // Cobra boilerplate
var renderCmd = &cobra.Command{
	Use:   "render <profile-file>",
	Short: "Render a profile to an HTML document",
	Long: `Render a profile file (JSON or YAML) through a template and write the
HTML document to stdout or to --out.

Example:
  cv-builder render profile.yaml --template modern --lang en
  cv-builder render profile.json --out cv.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderTemplate, "template", "", "Template id (default from config)")
	renderCmd.Flags().StringVar(&renderLang, "lang", "", "Language: ar or en (default from config)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Output file (default stdout)")
}

func runRender(cmd *cobra.Command, args []string) (err error) {
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
	store, err = loadStore(args[0], renderLang, renderTemplate, cfg)
	if err != nil {
		return err
	}

	var doc render.Document
	doc, err = renderStore(registry, store)
	if err != nil {
		return err
	}

	if renderOut == "" {
		_, err = os.Stdout.Write(doc.HTML)
		if err != nil {
			err = errors.Wrap(err, "failed to write document")
		}
		return err
	}

	err = render.WriteFile(doc, renderOut)
	if err != nil {
		return err
	}

	fmt.Printf("Document saved at: %s\n", renderOut)
	return err
}
