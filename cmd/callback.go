// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"bloomi/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// callbackCmd completes a login from a redirect URL pasted by the user or
// passed by the OS handler registered for the bloomi:// scheme.
var callbackCmd = &cobra.Command{
	Use:   "callback <url>",
	Short: "Complete sign-in from a redirect URL",
	Long: `The callback command finishes a browser sign-in using the URL the backend
redirected to, either bloomi://auth/callback?token=...&user=... or the loopback URL
printed by 'bloomi login'. It is ignored when you are already signed in.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.session.HandleDeepLink(cmd.Context(), args[0])
		if errors.Is(err, session.ErrAlreadyAuthenticated) {
			pterm.Printf("Already logged in as %s, ignoring the sign-in link\n", a.session.User().DisplayName())
			return nil
		}
		if err != nil {
			return err
		}
		pterm.Println(getRandomLoginGreeting(a.session.User().DisplayName()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callbackCmd)
}
