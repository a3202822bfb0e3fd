// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	bloomierrors "bloomi/cli/internal/errors"
	"bloomi/cli/internal/httperrors"
	"bloomi/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var assumeYes bool

// deleteAccountCmd permanently deletes the account on the backend. Local
// credentials are only removed once the backend confirms.
var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your Bloomi account",
	Long: `The delete-account command asks the backend to delete your account and all
meal history. You are signed out only after the backend confirms; if the request
fails your session is kept so you can retry.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireLogin(); err != nil {
			return err
		}

		if !assumeYes {
			if !terminal.IsInteractive() {
				pterm.Println("Refusing to delete the account without confirmation. Pass --yes to confirm.")
				return nil
			}
			pterm.Warning.Printf("This permanently deletes %s and all meal history.\n", a.session.User().DisplayName())
			if !terminal.Confirm(os.Stdin, os.Stdout, "Type DELETE to confirm: ", "delete") {
				pterm.Println("Account deletion cancelled")
				return nil
			}
		}

		spinner, _ := pterm.DefaultSpinner.Start("Deleting account")
		err = a.session.DeleteAccount(cmd.Context())
		if spinner != nil {
			_ = spinner.Stop()
		}
		if bloomierrors.Is(err, bloomierrors.PersistenceFailed) {
			pterm.Warning.Println("Your account was deleted, but saved credentials could not be removed from the keychain")
			return nil
		}
		if err != nil {
			return httperrors.Report(err, "deleting your account", a.cfg.APIURL)
		}
		pterm.Success.Println("Your account has been deleted and you have been signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteAccountCmd)
	deleteAccountCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}
