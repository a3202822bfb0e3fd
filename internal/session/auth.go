// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	stderrors "errors"
	"strings"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/errors"
	"bloomi/cli/internal/model"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyAuthenticated is returned when a login callback arrives while a
	// user is signed in. The callback is dropped.
	ErrAlreadyAuthenticated = stderrors.New("already signed in")
	// ErrInvalidCredentials is returned by Login for an empty token or a profile
	// that fails validation.
	ErrInvalidCredentials = stderrors.New("invalid credentials")
)

// Login persists the token and profile and marks the session authenticated.
// The token is written first. If the profile cannot be written the previous
// token is restored, so storage never holds a half-written login and the
// in-memory state is left untouched.
func (m *Manager) Login(ctx context.Context, token string, user model.User) error {
	return m.login(ctx, token, user, false)
}

func (m *Manager) login(ctx context.Context, token string, user model.User, onlySignedOut bool) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.Wrap(errors.InvalidCallback, "missing access token", ErrInvalidCredentials)
	}
	if err := m.validate.Struct(user); err != nil {
		return errors.Wrap(errors.InvalidCallback, "invalid user profile", stderrors.Join(ErrInvalidCredentials, err))
	}

	if err := m.persistLogin(ctx, token, user, onlySignedOut); err != nil {
		return err
	}
	m.logger.Info("signed in", zap.String("user_id", user.ID), zap.String("provider", user.Provider))
	m.publish()
	return nil
}

// persistLogin writes both credentials and sets the user while holding opMu.
func (m *Manager) persistLogin(ctx context.Context, token string, user model.User, onlySignedOut bool) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if onlySignedOut && m.IsAuthenticated() {
		return ErrAlreadyAuthenticated
	}

	previous, err := m.store.Token(ctx)
	if err != nil {
		m.logger.Debug("could not read previous token before login", zap.Error(err))
		previous = ""
	}

	if err := m.store.SaveToken(ctx, token); err != nil {
		return errors.Wrap(errors.PersistenceFailed, "could not save access token", err)
	}
	if err := m.store.SaveUser(ctx, user); err != nil {
		m.rollbackToken(ctx, previous)
		return errors.Wrap(errors.PersistenceFailed, "could not save user profile", err)
	}

	m.mu.Lock()
	m.user = &user
	m.gen++
	m.mu.Unlock()
	return nil
}

func (m *Manager) rollbackToken(ctx context.Context, previous string) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if previous == "" {
		err = m.store.ClearAll(ctx)
	} else {
		err = m.store.SaveToken(ctx, previous)
	}
	if err != nil {
		m.logger.Warn("failed to roll back token after partial login", zap.Error(err))
	}
}

// Logout signs the user out. Local credentials and in-memory state are cleared
// before Logout returns, regardless of ctx. Clearing web-session cookies and
// notifying the backend happen afterwards on detached goroutines whose
// failures are only logged; the backend is notified only when a token was
// stored, using that token explicitly.
//
// The returned error reports a storage failure; the session is signed out in
// memory even then.
func (m *Manager) Logout(ctx context.Context) error {
	local := context.WithoutCancel(ctx)

	m.opMu.Lock()
	token, err := m.store.Token(local)
	if err != nil {
		m.logger.Debug("could not read token before logout", zap.Error(err))
		token = ""
	}
	clearErr := m.store.ClearAll(local)

	m.mu.Lock()
	wasSignedIn := m.user != nil
	m.user = nil
	m.gen++
	m.mu.Unlock()
	m.opMu.Unlock()

	if clearErr != nil {
		m.logger.Error("failed to clear stored credentials", zap.Error(clearErr))
	}
	if wasSignedIn {
		m.logger.Info("signed out")
	}
	m.publish()

	m.clearWebSession(ctx)
	if token != "" {
		m.goTask(ctx, "remote logout", func(ctx context.Context) error {
			return m.remote.Logout(ctx, token)
		})
	}

	if clearErr != nil {
		return errors.Wrap(errors.PersistenceFailed, "could not clear stored credentials", clearErr)
	}
	return nil
}

func (m *Manager) clearWebSession(ctx context.Context) {
	if m.web == nil {
		return
	}
	m.goTask(ctx, "clear web session", m.web.ClearCookies)
}

// handleUnauthorized is bound to the unauthorized hook. It runs on the
// goroutine that received the 401.
func (m *Manager) handleUnauthorized() {
	m.logger.Info("backend rejected credentials, signing out")
	_ = m.Logout(context.Background())
}

// DeleteAccount asks the backend to delete the account and signs out only if
// it succeeds. On failure the session is unchanged, except when the backend
// answered 401, in which case the unauthorized hook has already signed out.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	if !m.IsAuthenticated() {
		return errors.New(errors.NotAuthenticated, "not signed in")
	}
	if err := m.remote.DeleteAccount(ctx); err != nil {
		if apiclient.IsUnauthorized(err) {
			return errors.Wrap(errors.NotAuthenticated, "session expired", err)
		}
		return errors.Wrap(errors.RemoteFailed, "could not delete account", err)
	}

	local := context.WithoutCancel(ctx)
	m.opMu.Lock()
	clearErr := m.store.ClearAll(local)
	m.mu.Lock()
	m.user = nil
	m.gen++
	m.mu.Unlock()
	m.opMu.Unlock()

	m.logger.Info("account deleted")
	m.publish()
	m.clearWebSession(ctx)

	if clearErr != nil {
		m.logger.Error("failed to clear stored credentials after account deletion", zap.Error(clearErr))
		return errors.Wrap(errors.PersistenceFailed, "account deleted but local credentials could not be cleared", clearErr)
	}
	return nil
}
