package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/config"
	"github.com/sevanw/episodic/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage episodic configuration",
		Long: `Commands for managing episodic configuration.

The config file is stored at: ~/.config/episodic/config.toml

Examples:
  episodic config init              # Create default config file
  episodic config show              # Display current configuration
  episodic config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists() && !force {
				path, _ := paths.ConfigPath()
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := paths.ConfigPath()
			fmt.Printf("✓ Created config file: %s\n", path)
			fmt.Println("\nEdit the file to set your naming template and watch directories.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(cfg.ToTOML())
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
