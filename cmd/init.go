package cmd

import (
	"fmt"

	"github.com/gnolang/errfix/fix"
	"github.com/spf13/cobra"
)

// initCmd: errfix init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", cfgFile)
		return nil
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = fix.DefaultConfigPath
	}
	return fix.WriteConfig(configurationPath, fix.DefaultConfig())
}
