// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"bloomi/cli/internal/httperrors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// meCmd prints the full profile fetched from the backend.
var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your Bloomi profile",
	Long: `The me command fetches your profile from the backend and shows name, email,
sign-in provider and membership tier. Use --log-level debug to see requests.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireLogin(); err != nil {
			return err
		}

		u, err := a.api.GetMe(cmd.Context())
		if err != nil {
			return httperrors.Report(err, "loading your profile", a.cfg.APIURL)
		}
		if u == nil {
			return errors.New("backend returned no profile")
		}

		membership := string(u.Membership)
		if membership == "" {
			membership = "FREE"
		}
		data := pterm.TableData{
			{"Name", u.Name},
			{"Email", u.Email},
			{"Provider", u.Provider},
			{"Membership", membership},
			{"ID", u.ID},
		}
		table, err := pterm.DefaultTable.WithData(data).Srender()
		if err != nil {
			return err
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Bloomi Profile")).
			Println(table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
}
