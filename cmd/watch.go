// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sync"
	"time"

	"bloomi/cli/internal/lifecycle"
	"bloomi/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

// watchCmd keeps a session open in the foreground and prints every state
// change. Resuming the process after Ctrl-Z re-validates the session, and
// --interval adds periodic checks.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the session and re-validate when resumed",
	Long: `The watch command stays running and reports session changes. When the process
is resumed after being suspended (Ctrl-Z, then fg) the session is checked with the
backend; an expired session is signed out immediately. Stop with Ctrl-C.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cancel := a.session.Subscribe(func(s session.Snapshot) {
			printSnapshot(s)
		})
		defer cancel()
		printSnapshot(a.session.Snapshot())

		var ticking sync.WaitGroup
		defer ticking.Wait()
		if watchInterval > 0 {
			ticking.Add(1)
			go func() {
				defer ticking.Done()
				ticker := time.NewTicker(watchInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						a.session.HandleAppStateChange(ctx, lifecycle.Transition{From: lifecycle.Inactive, To: lifecycle.Active})
					}
				}
			}()
		}

		lifecycle.NewWatcher().Run(ctx, func(t lifecycle.Transition) {
			a.logger.Debug("resumed, re-validating session")
			a.session.HandleAppStateChange(ctx, t)
		})
		return nil
	},
}

func printSnapshot(s session.Snapshot) {
	ts := time.Now().Format(time.TimeOnly)
	switch s.State {
	case session.StateAuthenticated:
		if s.User == nil {
			pterm.Printf("%s  👤 signed in\n", ts)
			return
		}
		pterm.Printf("%s  👤 signed in as %s\n", ts, s.User.DisplayName())
	case session.StateUnauthenticated:
		pterm.Printf("%s  🔒 signed out\n", ts)
	default:
		pterm.Printf("%s  … %s\n", ts, s.State)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Also re-validate periodically (e.g. 15m); 0 disables")
}
