package cmd

import (
	"fmt"

	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var templatesLang string

//nolint:gochecknoglobals // Cobra boilerplate
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.Flags().StringVar(&templatesLang, "lang", "en", "Language for display names: ar or en")
}

func runTemplates(cmd *cobra.Command, args []string) (err error) {
	var lang render.Language
	lang, err = render.ParseLanguage(templatesLang)
	if err != nil {
		return err
	}

	registry := render.DefaultRegistry()
	for _, t := range registry.List() {
		marker := " "
		if t.ID() == registry.Default() {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s\n", marker, t.ID(), t.DisplayName(lang))
	}

	return err
}
