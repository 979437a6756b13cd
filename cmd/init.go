package cmd

import (
	"fmt"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default config file to --config, or to $HOME/.cv-builder/config.json.
A .yaml or .yml path produces YAML. Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	err = config.InitConfig(path)
	if err != nil {
		return err
	}

	fmt.Printf("Config written to %s\n", path)
	return err
}
