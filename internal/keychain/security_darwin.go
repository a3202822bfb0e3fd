// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/99designs/keyring"
)

// securityRing implements keyring.Keyring using the macOS security command.
type securityRing struct{}

// newSecurityRing creates a new macOS security command backend.
func newSecurityRing() (*securityRing, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityRing{}, nil
}

// Set stores an item in the login keychain, replacing any previous value.
func (s *securityRing) Set(item keyring.Item) error {
	_ = s.Remove(item.Key)

	cmd := exec.Command("security", "add-generic-password",
		"-a", ServiceName, // account name
		"-s", item.Key, // service name
		"-w", encodeSecret(item.Data),
		"-U", // update if exists
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", item.Key, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Get retrieves an item from the login keychain.
func (s *securityRing) Get(key string) (keyring.Item, error) {
	cmd := exec.Command("security", "find-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w", // output password only
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return keyring.Item{}, keyring.ErrKeyNotFound
		}
		return keyring.Item{}, fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	data, err := decodeSecret(strings.TrimSpace(stdout.String()))
	if err != nil {
		return keyring.Item{}, fmt.Errorf("failed to decode '%s' from keychain: %w", key, err)
	}
	return keyring.Item{Key: key, Data: data}, nil
}

// GetMetadata is not supported by the security command without unlocking the item.
func (s *securityRing) GetMetadata(key string) (keyring.Metadata, error) {
	return keyring.Metadata{}, keyring.ErrMetadataNeedsCredentials
}

// Remove deletes a key from the login keychain. Missing keys are not an error.
func (s *securityRing) Remove(key string) error {
	cmd := exec.Command("security", "delete-generic-password",
		"-a", ServiceName,
		"-s", key,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return nil
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Keys is not supported; the credential store only uses fixed keys.
func (s *securityRing) Keys() ([]string, error) {
	return nil, fmt.Errorf("listing keys is not supported by the security backend")
}
