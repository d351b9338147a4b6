package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Check a TOML support config for out-of-range values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("config is valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "treesupport.toml", "path to a TOML config file")
	return cmd
}
