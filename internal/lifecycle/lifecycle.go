// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package lifecycle reports when the client returns to the foreground.
//
// A terminal process has no window focus; the closest equivalent is job control.
// A process stopped with Ctrl-Z (or SIGSTOP) and later resumed receives SIGCONT,
// which the Watcher reports as a background → active transition.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
)

// AppState is the host application's visibility state.
type AppState string

const (
	Active     AppState = "active"
	Inactive   AppState = "inactive"
	Background AppState = "background"
)

// Transition is a change between two application states.
type Transition struct {
	From AppState
	To   AppState
}

// IsForeground reports whether the transition brings the app back to active.
func (t Transition) IsForeground() bool {
	return t.To == Active && (t.From == Background || t.From == Inactive)
}

// Watcher converts resume signals into transitions.
type Watcher struct {
	signals []os.Signal
}

// NewWatcher returns a watcher for the platform's resume signals.
func NewWatcher() *Watcher {
	return &Watcher{signals: resumeSignals()}
}

// Run delivers a Background → Active transition to fn for every resume signal
// until ctx is done. fn runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(Transition)) {
	if len(w.signals) == 0 {
		<-ctx.Done()
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, w.signals...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			fn(Transition{From: Background, To: Active})
		}
	}
}
