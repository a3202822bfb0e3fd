// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"bloomi/cli/internal/apiclient"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// whoamiCmd shows the signed-in account after checking it with the backend.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command re-validates the stored session with the backend and shows
the signed-in account. A rejected session is cleared; if the backend is
unreachable the locally stored profile is shown instead.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.session.IsAuthenticated() {
			printNotLoggedIn()
			return nil
		}

		if err := a.session.Revalidate(cmd.Context()); err != nil {
			if apiclient.IsUnauthorized(err) {
				pterm.Println("🔒 Your session has expired and you have been signed out.")
				pterm.Println("   Run 'bloomi login' to sign in again.")
				return nil
			}
			a.logger.Debug("showing cached profile", zap.Error(err))
		}

		if u := a.session.User(); u != nil {
			pterm.Println(getWhoAmIPhrase(u.DisplayName()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func getWhoAmIPhrase(identifier string) string {
	return fmt.Sprintf("👤 Current user: %s", identifier)
}
