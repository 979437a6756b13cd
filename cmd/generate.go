package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/nikogura/cv-builder/pkg/llm"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/summary"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var generateLang string

//nolint:gochecknoglobals // Cobra boilerplate
var generateWrite bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <profile-file>",
	Short: "Generate a professional summary with Claude",
	Long: `Ask Claude for a short professional summary built from the profile's
name, title and skills, and print it.

With --write the summary replaces the one in the profile file.

Example:
  cv-builder generate profile.yaml
  cv-builder generate profile.json --lang en --write`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateLang, "lang", "", "Prompt language: ar or en (default from config)")
	generateCmd.Flags().BoolVar(&generateWrite, "write", false, "Write the summary back into the profile file")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	err = cfg.ValidateGeneration()
	if err != nil {
		return err
	}

	profilePath := args[0]

	var store *profile.Store
	store, err = loadStore(profilePath, generateLang, "", cfg)
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetGenerationModel())

	if getVerbose() {
		fmt.Printf("Generating summary with %s (timeout %s)...\n", client.Model(), cfg.GenerationTimeout())
	}

	var text string
	text, err = generateSummary(context.Background(), client, store, cfg.GenerationTimeout(), profilePath, generateWrite)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return err
}

// generateSummary runs generation against store and, when write is set, saves
// the updated profile back to profilePath.
func generateSummary(ctx context.Context, gen summary.Generator, store *profile.Store, timeout time.Duration, profilePath string, write bool) (text string, err error) {
	result := summary.Generate(ctx, gen, store, timeout)
	if result.Err != nil {
		err = errors.Wrap(result.Err, "summary generation failed")
		return text, err
	}

	text = result.Text

	if !write {
		return text, err
	}

	err = profile.Save(profilePath, store.Snapshot().Profile)
	if err != nil {
		return text, err
	}

	if getVerbose() {
		fmt.Printf("Summary written to %s\n", profilePath)
	}

	return text, err
}
