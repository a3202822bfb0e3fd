// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/authhook"
	"bloomi/cli/internal/backend"
	"bloomi/cli/internal/deeplink"
	bloomierrors "bloomi/cli/internal/errors"
	"bloomi/cli/internal/lifecycle"
	"bloomi/cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbackURL(t *testing.T, token string, u model.User) string {
	t.Helper()
	raw, err := deeplink.Build(deeplink.SchemeURL("bloomi"), deeplink.Callback{Token: token, User: u})
	require.NoError(t, err)
	return raw
}

func TestHandleDeepLinkSignsIn(t *testing.T) {
	m := newManager(t, newFakeStore(), &fakeRemote{})

	require.NoError(t, m.HandleDeepLink(context.Background(), callbackURL(t, "tok", alice)))
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "u-1", m.User().ID)
}

func TestHandleDeepLinkIgnoredWhenSignedIn(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	m := newManager(t, store, &fakeRemote{})

	bob := model.User{ID: "u-2", Name: "Bob"}
	err := m.HandleDeepLink(context.Background(), callbackURL(t, "other", bob))
	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)

	assert.Equal(t, &alice, m.User())
	token, err := store.Store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestHandleDeepLinkWaitsForRehydration(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	store.gate = make(chan struct{})
	m := newManager(t, store, &fakeRemote{})

	raw := callbackURL(t, "other", model.User{ID: "u-2"})
	done := make(chan error, 1)
	go func() {
		done <- m.HandleDeepLink(context.Background(), raw)
	}()

	select {
	case err := <-done:
		t.Fatalf("callback handled before rehydration: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(store.gate)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrAlreadyAuthenticated)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never handled")
	}
}

func TestHandleDeepLinkErrors(t *testing.T) {
	m := newManager(t, newFakeStore(), &fakeRemote{})

	err := m.HandleDeepLink(context.Background(), "bloomi://auth/callback?error=access_denied")
	assert.True(t, bloomierrors.Is(err, bloomierrors.LoginCancelled))

	err = m.HandleDeepLink(context.Background(), "bloomi://auth/callback?token=tok")
	assert.True(t, bloomierrors.Is(err, bloomierrors.InvalidCallback))

	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestRevalidateKeepsSessionOnTransientFailure(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	remote := &fakeRemote{meErr: errors.New("connection refused")}
	m := newManager(t, store, remote)
	ready(t, m)

	assert.Error(t, m.Revalidate(context.Background()))
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestRevalidatePersistsChangedProfile(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	upgraded := alice
	upgraded.Membership = model.MembershipTier1
	m := newManager(t, store, &fakeRemote{me: &upgraded})
	ready(t, m)

	require.NoError(t, m.Revalidate(context.Background()))
	assert.Equal(t, model.MembershipTier1, m.User().Membership)

	saved, err := store.Store.User(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.MembershipTier1, saved.Membership)
}

func TestRevalidateWhenSignedOutIsNoop(t *testing.T) {
	remote := &fakeRemote{meErr: errors.New("must not be called")}
	m := newManager(t, newFakeStore(), remote)
	ready(t, m)

	assert.NoError(t, m.Revalidate(context.Background()))
}

func TestHandleAppStateChangeRevalidatesOnForeground(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	renamed := alice
	renamed.Name = "Alice B."
	m := newManager(t, store, &fakeRemote{me: &renamed})
	ready(t, m)

	m.HandleAppStateChange(context.Background(), lifecycle.Transition{From: lifecycle.Active, To: lifecycle.Inactive})
	m.Wait()
	assert.Equal(t, "Alice", m.User().Name)

	m.HandleAppStateChange(context.Background(), lifecycle.Transition{From: lifecycle.Background, To: lifecycle.Active})
	m.Wait()
	assert.Equal(t, "Alice B.", m.User().Name)
}

func TestHandleAppStateChangeKeepsSessionOnTransientFailure(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	m := newManager(t, store, &fakeRemote{meErr: errors.New("connection reset by peer")})
	ready(t, m)

	m.HandleAppStateChange(context.Background(), lifecycle.Transition{From: lifecycle.Background, To: lifecycle.Active})
	m.Wait()

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, &alice, m.User())
	token, err := store.Store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestHandleAppStateChangeWithCancelledContextDoesNothing(t *testing.T) {
	store := newFakeStore()
	store.seed(t, "tok", &alice)
	remote := &fakeRemote{me: &alice}
	m := newManager(t, store, remote)
	ready(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.HandleAppStateChange(ctx, lifecycle.Transition{From: lifecycle.Background, To: lifecycle.Active})
	m.Wait()

	assert.Zero(t, remote.getMeCalls())
}

// newBackendSession wires a session to a real HTTP client against srv.
func newBackendSession(t *testing.T, srv *httptest.Server, store *fakeStore) *Manager {
	t.Helper()
	hook := authhook.New()
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Store: store, Hook: hook, Timeout: 2 * time.Second})
	require.NoError(t, err)
	m := New(Deps{Store: store, API: backend.New(client), Hook: hook, Web: client, TaskTimeout: 2 * time.Second})
	t.Cleanup(m.Wait)
	ready(t, m)
	return m
}

func TestConcurrentUnauthorizedResponsesNotifyBackendOnce(t *testing.T) {
	var logoutCalls atomic.Int32
	var logoutAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case backend.PathLogout:
			logoutCalls.Add(1)
			logoutAuth.Store(r.Header.Get("Authorization"))
			// A rejected logout must not start another logout.
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"expired"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"expired"}`))
		}
	}))
	defer srv.Close()

	store := newFakeStore()
	store.seed(t, "tok-1", &alice)
	m := newBackendSession(t, srv, store)
	require.Equal(t, StateAuthenticated, m.State())

	api := m.remote
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := api.GetMe(context.Background())
			assert.True(t, apiclient.IsUnauthorized(err))
		}()
	}
	wg.Wait()
	m.Wait()

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, int32(1), logoutCalls.Load())
	assert.Equal(t, "Bearer tok-1", logoutAuth.Load())

	token, err := store.Store.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestForegroundRevalidationWithRejectedTokenSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == backend.PathLogout {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	store := newFakeStore()
	store.seed(t, "tok-1", &alice)
	m := newBackendSession(t, srv, store)

	m.HandleAppStateChange(context.Background(), lifecycle.Transition{From: lifecycle.Background, To: lifecycle.Active})
	m.Wait()
	assert.Equal(t, StateUnauthenticated, m.State())
}
