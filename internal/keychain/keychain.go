// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain opens the platform key-value store used to persist Bloomi
// credentials. On macOS it prefers the native `security` command and falls back
// to the keyring library; elsewhere it uses whichever keyring backends are
// configured (Secret Service, KWallet, keyctl, pass, Windows Credential Manager
// or an encrypted file).
package keychain

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "bloomi"

// Config selects and tunes the keyring backends.
type Config struct {
	// Backends restricts the keyring backends, in preference order.
	// Empty means every backend available on this platform.
	Backends []string
	// FileDir is where the encrypted file backend keeps its items.
	FileDir string
	// FilePassword unlocks the file backend. Empty prompts on the terminal.
	FilePassword string
	// NativeSecurity enables the macOS `security` command backend.
	NativeSecurity bool
}

// Open returns the keyring described by cfg.
func Open(cfg Config) (keyring.Keyring, error) {
	if runtime.GOOS == "darwin" && cfg.NativeSecurity {
		ring, err := newSecurityRing()
		if err == nil {
			return ring, nil
		}
		// Fall through to keyring library if security command fails
	}

	allowed, err := parseBackends(cfg.Backends)
	if err != nil {
		return nil, err
	}

	kc := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowed,
		KeychainTrustApplication: true,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
		KeyCtlScope:              "user",
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         keyring.TerminalPrompt,
	}
	if cfg.FilePassword != "" {
		kc.FilePasswordFunc = keyring.FixedStringPrompt(cfg.FilePassword)
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass' (brew install pass gnupg) or set keyring.backends to [\"file\"]")
		}
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// parseBackends maps configured names onto keyring backend types.
func parseBackends(names []string) ([]keyring.BackendType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[string]keyring.BackendType)
	for _, b := range keyring.AvailableBackends() {
		known[string(b)] = b
	}
	out := make([]keyring.BackendType, 0, len(names))
	for _, n := range names {
		b, ok := known[n]
		if !ok {
			return nil, fmt.Errorf("keyring backend %q is not available on %s", n, runtime.GOOS)
		}
		out = append(out, b)
	}
	return out, nil
}
