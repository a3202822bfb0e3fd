// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"
	"time"

	"bloomi/cli/internal/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// configCmd groups the config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change client settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := configFile
		if path == "" {
			if path, err = config.Path(); err != nil {
				return err
			}
		}
		backends := strings.Join(cfg.Keyring.Backends, ",")
		if backends == "" {
			backends = "auto"
		}
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"file", path},
			{"api_url", cfg.APIURL},
			{"timeout", cfg.Timeout.String()},
			{"provider", cfg.Provider},
			{"redirect_scheme", cfg.RedirectScheme},
			{"log_level", cfg.LogLevel},
			{"log_format", cfg.LogFormat},
			{"keyring.backends", backends},
			{"keyring.file_dir", cfg.Keyring.FileDir},
		}).Render()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save it",
	Long: `Keys: api_url, timeout, provider, redirect_scheme, log_level, log_format.
Secrets such as the keyring file password are never written to the config file;
use BLOOMI_KEYRING_FILE_PASSWORD instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := applySetting(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(configFile, *cfg); err != nil {
			return err
		}
		pterm.Success.Printf("%s set to %s\n", args[0], args[1])
		return nil
	},
}

func applySetting(cfg *config.Config, key, value string) error {
	switch strings.ReplaceAll(key, "-", "_") {
	case "api_url":
		cfg.APIURL = strings.TrimRight(value, "/")
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		cfg.Timeout = d
	case "provider":
		cfg.Provider = value
	case "redirect_scheme":
		cfg.RedirectScheme = value
	case "log_level":
		cfg.LogLevel = value
	case "log_format":
		cfg.LogFormat = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
