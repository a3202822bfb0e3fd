// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import (
	"errors"

	"github.com/99designs/keyring"
)

// newSecurityRing returns an error on non-macOS platforms.
func newSecurityRing() (keyring.Keyring, error) {
	return nil, errors.New("security backend only available on macOS")
}
