// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	stderrors "errors"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/deeplink"
	"bloomi/cli/internal/errors"
	"bloomi/cli/internal/lifecycle"
	"bloomi/cli/internal/logging"
	"bloomi/cli/internal/model"

	"go.uber.org/zap"
)

// Revalidate checks the stored credentials against the backend. A 401 signs
// out through the unauthorized hook; any other failure keeps the session.
// When the backend returns a changed profile it is persisted and published,
// unless the session changed while the request was in flight.
func (m *Manager) Revalidate(ctx context.Context) error {
	m.mu.RLock()
	current, gen := m.user, m.gen
	m.mu.RUnlock()
	if current == nil {
		return nil
	}

	fresh, err := m.remote.GetMe(ctx)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			m.logger.Info("session no longer valid")
		} else {
			m.logger.Warn("could not re-validate session, keeping it", zap.Error(err))
		}
		return err
	}
	if fresh == nil || fresh.ID == "" || sameProfile(current, fresh) {
		return nil
	}

	updated, err := m.storeProfile(ctx, *fresh, gen)
	if err != nil || !updated {
		return err
	}
	m.logger.Debug("profile refreshed", zap.String("user_id", fresh.ID))
	m.publish()
	return nil
}

// storeProfile replaces the profile unless the session changed since gen.
func (m *Manager) storeProfile(ctx context.Context, u model.User, gen uint64) (bool, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	stale := m.gen != gen || m.user == nil
	m.mu.RUnlock()
	if stale {
		return false, nil
	}
	if err := m.store.SaveUser(ctx, u); err != nil {
		m.logger.Warn("could not persist refreshed profile", zap.Error(err))
		return false, errors.Wrap(errors.PersistenceFailed, "could not save user profile", err)
	}
	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return true, nil
}

func sameProfile(a, b *model.User) bool {
	return *a == *b
}

// HandleAppStateChange re-validates the session in the background when the
// app comes back to the foreground with a user signed in.
func (m *Manager) HandleAppStateChange(ctx context.Context, t lifecycle.Transition) {
	if ctx.Err() != nil || !t.IsForeground() || !m.IsAuthenticated() {
		return
	}
	m.goTask(ctx, "foreground re-validation", func(ctx context.Context) error {
		err := m.Revalidate(ctx)
		if apiclient.IsUnauthorized(err) {
			return nil
		}
		return err
	})
}

// HandleDeepLink completes a login from a callback URL. It waits for
// rehydration first and drops the callback with ErrAlreadyAuthenticated when a
// user is already signed in.
func (m *Manager) HandleDeepLink(ctx context.Context, rawURL string) error {
	if err := m.WaitReady(ctx); err != nil {
		return err
	}
	m.logger.Debug("received login callback", logging.Secret("url", rawURL))
	if m.IsAuthenticated() {
		m.logger.Info("ignoring login callback, already signed in")
		return ErrAlreadyAuthenticated
	}

	cb, err := deeplink.Parse(rawURL)
	if err != nil {
		var perr *deeplink.ProviderError
		if stderrors.As(err, &perr) {
			return errors.Wrap(errors.LoginCancelled, "provider did not complete the login", err)
		}
		return errors.Wrap(errors.InvalidCallback, "could not read login callback", err)
	}

	err = m.login(ctx, cb.Token, cb.User, true)
	if stderrors.Is(err, ErrAlreadyAuthenticated) {
		m.logger.Info("ignoring login callback, already signed in")
	}
	return err
}
