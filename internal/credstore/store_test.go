// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package credstore

import (
	"context"
	"errors"
	"testing"

	"bloomi/cli/internal/model"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyRing fails Remove for one key so ClearAll's error path can be observed.
type flakyRing struct {
	*keyring.ArrayKeyring
	failRemove string
}

func (f *flakyRing) Remove(key string) error {
	if key == f.failRemove {
		return errors.New("keychain locked")
	}
	return f.ArrayKeyring.Remove(key)
}

func TestEmptyStoreReportsAbsent(t *testing.T) {
	ctx := context.Background()
	s := New(keyring.NewArrayKeyring(nil))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New(keyring.NewArrayKeyring(nil))
	want := model.User{ID: "u-1", Email: "kim@example.com", Name: "Kim", Provider: "google", Membership: model.MembershipFree}

	require.NoError(t, s.SaveToken(ctx, "tok-123"))
	require.NoError(t, s.SaveUser(ctx, want))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	got, err := s.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestClearAllRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	s := New(keyring.NewArrayKeyring(nil))
	require.NoError(t, s.SaveToken(ctx, "tok"))
	require.NoError(t, s.SaveUser(ctx, model.User{ID: "u"}))

	require.NoError(t, s.ClearAll(ctx))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestClearAllIsIdempotent(t *testing.T) {
	s := New(keyring.NewArrayKeyring(nil))
	assert.NoError(t, s.ClearAll(context.Background()))
	assert.NoError(t, s.ClearAll(context.Background()))
}

func TestClearAllAttemptsBothRemovals(t *testing.T) {
	ctx := context.Background()
	ring := &flakyRing{ArrayKeyring: keyring.NewArrayKeyring(nil), failRemove: KeyAccessToken}
	s := New(ring)
	require.NoError(t, s.SaveToken(ctx, "tok"))
	require.NoError(t, s.SaveUser(ctx, model.User{ID: "u"}))

	err := s.ClearAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyAccessToken)

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u, "user key must be removed even though the token removal failed")
}

func TestCorruptUserIsAnError(t *testing.T) {
	ctx := context.Background()
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: KeyUser, Data: []byte("{not json")}})
	s := New(ring)

	_, err := s.User(ctx)
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(keyring.NewArrayKeyring(nil))

	assert.ErrorIs(t, s.SaveToken(ctx, "tok"), context.Canceled)
	_, err := s.Token(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
