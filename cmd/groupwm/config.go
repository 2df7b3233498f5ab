package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/groupwm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate or print the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and report errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("path")
		res, err := loadConfigResult(path)
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			fmt.Fprintf(cmd.OutOrStdout(), "loaded: %s\n", f)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.DefaultConfig()
		if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
			path, _ := cmd.Flags().GetString("path")
			loaded, err := loadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in defaults to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			var err error
			if path, err = config.DefaultConfigPath(); err != nil {
				return err
			}
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{configValidateCmd, configPrintCmd, configInitCmd} {
		c.Flags().String("path", "", "Config file path (default: ~/.config/groupwm/config.yaml)")
	}
	configPrintCmd.Flags().Bool("defaults", false, "Print built-in defaults (no files)")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configInitCmd)
}
