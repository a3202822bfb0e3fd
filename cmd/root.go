// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Bloomi client.
// It implements sign-in through the browser, session management and meal
// photo analysis using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/backend"
	"bloomi/cli/internal/config"
	"bloomi/cli/internal/credstore"
	"bloomi/cli/internal/logging"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configFile  string
	apiURLFlag  string
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "bloomi",
	Short:         "Bloomi meal tracking from the terminal",
	Long:          `Bloomi analyses meal photos for calories and nutrients and keeps your daily food log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return printVersion(cmd.Context())
		}
		return cmd.Help()
	},
}

// printVersion reports the CLI version and, when reachable, the backend's.
// No credentials are needed, so the client runs over an empty in-memory store.
func printVersion(ctx context.Context) error {
	backendVersion := "unknown"
	cfg, err := loadConfig()
	if err == nil {
		client, err := apiclient.New(apiclient.Options{
			BaseURL:   cfg.APIURL,
			Timeout:   cfg.Timeout,
			UserAgent: userAgent(),
			Store:     credstore.New(keyring.NewArrayKeyring(nil)),
		})
		if err == nil {
			if v, err := backend.New(client).GetVersion(ctx); err == nil && v != "" {
				backendVersion = v
			}
		}
	}
	fmt.Printf("bloomi %s\nbackend %s\n", Version, backendVersion)
	return nil
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func userAgent() string {
	return "bloomi-cli/" + Version
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/bloomi/config.json)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides BLOOMI_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}
