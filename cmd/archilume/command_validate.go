package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vincentlogarzo/archilume/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateConfig()
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validateConfig() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s is valid (project %s)\n", configFile, cfg.Project)
	return nil
}
