// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package credstore persists the two credentials the client keeps between runs:
// the bearer access token and the serialized user profile. Both live in the
// platform key-value store under fixed keys and are only ever cleared together.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"bloomi/cli/internal/model"

	"github.com/99designs/keyring"
	"github.com/goccy/go-json"
)

// Keys used for storing credentials in the keyring.
const (
	KeyAccessToken = "bloomi:accessToken"
	KeyUser        = "bloomi:user"
)

// Store is the credential persistence contract. A missing value is reported as
// ("", nil) or (nil, nil); errors are reserved for storage failures.
type Store interface {
	SaveToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	SaveUser(ctx context.Context, user model.User) error
	User(ctx context.Context) (*model.User, error)
	ClearAll(ctx context.Context) error
}

// Keyring implements Store over a keyring.Keyring.
// This type is safe for concurrent use.
type Keyring struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

var _ Store = (*Keyring)(nil)

// New wraps an opened keyring.
func New(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// SaveToken stores the access token.
func (k *Keyring) SaveToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ring.Set(keyring.Item{Key: KeyAccessToken, Data: []byte(token), Label: "Bloomi access token"}); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	return nil
}

// Token returns the stored access token, or "" when none is stored.
func (k *Keyring) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	data, err := k.get(KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("load access token: %w", err)
	}
	return string(data), nil
}

// SaveUser stores the profile as JSON.
func (k *Keyring) SaveUser(ctx context.Context, user model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ring.Set(keyring.Item{Key: KeyUser, Data: b, Label: "Bloomi user profile"}); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// User returns the stored profile, or nil when none is stored.
func (k *Keyring) User(ctx context.Context) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	data, err := k.get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// ClearAll removes both credentials. Both removals are always attempted;
// the first failure is returned.
func (k *Keyring) ClearAll(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var first error
	for _, key := range []string{KeyAccessToken, KeyUser} {
		if err := k.ring.Remove(key); err != nil && !isNotFound(err) && first == nil {
			first = fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return first
}

// get reads a key, mapping "not found" onto an empty value.
func (k *Keyring) get(key string) ([]byte, error) {
	it, err := k.ring.Get(key)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return it.Data, nil
}

// isNotFound reports whether err means the key does not exist. The file
// backend surfaces a missing item as an os "not exist" error.
func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}
