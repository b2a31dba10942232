package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-pet/internal/config"
)

var flagConfigEffective bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the server configuration",
	Long: `Print the built-in default configuration, ready to be saved as
~/.pet/config.yaml and edited.

With --effective the configuration serve would actually use is printed,
after the config file and PET_* environment variables are applied.

Examples:
  pet config > ~/.pet/config.yaml
  PET_HTTP_ADDR=:8080 pet config --effective`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigEffective, "effective", false, "Print the resolved configuration instead of the defaults")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if !flagConfigEffective {
		_, err := w.Write(config.DefaultYAML())
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
