// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the local session and notifies the backend.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove saved credentials",
	Long: `The logout command removes the access token and profile from the OS keychain,
drops any web-session cookies and then tells the backend to invalidate the token
(best effort). Local credentials are removed even when the backend is unreachable.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		wasSignedIn := a.session.IsAuthenticated()
		if err := a.session.Logout(cmd.Context()); err != nil {
			pterm.Warning.Printf("Signed out, but the keychain could not be fully cleared: %v\n", err)
			return nil
		}
		if wasSignedIn {
			pterm.Println("✅ Signed out. Saved credentials have been removed")
		} else {
			pterm.Println("You were not signed in. Any leftover credentials have been removed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
