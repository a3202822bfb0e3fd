// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/authhook"
	"bloomi/cli/internal/backend"
	"bloomi/cli/internal/config"
	"bloomi/cli/internal/credstore"
	"bloomi/cli/internal/keychain"
	"bloomi/cli/internal/logging"
	"bloomi/cli/internal/meals"
	"bloomi/cli/internal/session"

	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// errNotLoggedIn is returned by commands that need a session after the
// "not logged in" hint has been printed.
var errNotLoggedIn = errors.New("not logged in")

// app is the wiring every session-aware command shares: one credential store,
// one HTTP client whose 401 handling is bound to one session manager.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *apiclient.Client
	api     backend.API
	session *session.Manager
	meals   *meals.Service
}

// newApp builds the client stack and waits for the stored session to load.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "bloomi"})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ring, err := keychain.Open(keychain.Config{
		Backends:       cfg.Keyring.Backends,
		FileDir:        cfg.Keyring.FileDir,
		FilePassword:   cfg.Keyring.FilePassword,
		NativeSecurity: cfg.Keyring.NativeSecurity,
	})
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	store := credstore.New(ring)

	hook := authhook.New()
	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		UserAgent: userAgent(),
		Store:     store,
		Hook:      hook,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	api := backend.New(client)

	sess := session.New(session.Deps{
		Store:       store,
		API:         api,
		Hook:        hook,
		Web:         client,
		Logger:      logger,
		TaskTimeout: cfg.Timeout,
	})
	if err := sess.WaitReady(ctx); err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		api:     api,
		session: sess,
		meals:   meals.NewService(api, logger),
	}, nil
}

// Close waits for detached session work such as the remote logout call, so
// the process does not exit before it is sent.
func (a *app) Close() {
	a.session.Wait()
	_ = a.logger.Sync()
}

// requireLogin prints a hint and returns errNotLoggedIn when nobody is
// signed in.
func (a *app) requireLogin() error {
	if a.session.IsAuthenticated() {
		return nil
	}
	printNotLoggedIn()
	return errNotLoggedIn
}

func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'bloomi login' to get started.")
}
