// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bloomi/cli/internal/authhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTokens is an in-memory TokenSource.
type memTokens struct {
	mu      sync.Mutex
	token   string
	readErr error
	cleared int
}

func (m *memTokens) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.readErr
}

func (m *memTokens) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func (m *memTokens) clearedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

func newTestClient(t *testing.T, srv *httptest.Server, store *memTokens, hook *authhook.Hook) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: srv.URL, Store: store, Hook: hook, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURLAndStore(t *testing.T) {
	_, err := New(Options{Store: &memTokens{}})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestAttachesBearerToken(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(HeaderRequestID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{token: "tok-1"}, nil)
	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/auth/me")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestNoTokenSendsNoHeader(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{}, nil)
	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/api/version")
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestTokenReadFailureStillSends(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{readErr: errors.New("keychain locked")}, nil)
	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestExplicitAuthorizationWins(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{token: "stored"}, nil)
	_, err := c.Do(c.R(context.Background()).SetHeader("Authorization", "Bearer explicit"), http.MethodPost, "/auth/logout")
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", gotAuth)
}

func TestUnauthorizedFiresHookAndReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"token expired"}`))
	}))
	defer srv.Close()

	hook := authhook.New()
	var fired int32
	hook.Set(func() { atomic.AddInt32(&fired, 1) })
	store := &memTokens{token: "stale"}
	c := newTestClient(t, srv, store, hook)

	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/auth/me")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "token expired")
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, store.clearedCount(), "registered handler owns the cleanup")
}

func TestUnauthorizedWithoutHandlerClearsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &memTokens{token: "stale"}
	c := newTestClient(t, srv, store, authhook.New())

	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/auth/me")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, store.clearedCount())
}

func TestOtherStatusesDoNotTouchSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	hook := authhook.New()
	var fired int32
	hook.Set(func() { atomic.AddInt32(&fired, 1) })
	store := &memTokens{token: "tok"}
	c := newTestClient(t, srv, store, hook)

	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/auth/me")
	require.Error(t, err)
	assert.True(t, HasStatus(err, http.StatusInternalServerError))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, store.clearedCount())
}

func TestTransportErrorDoesNotFireHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	hook := authhook.New()
	var fired int32
	hook.Set(func() { atomic.AddInt32(&fired, 1) })
	store := &memTokens{token: "tok"}
	c := newTestClient(t, srv, store, hook)

	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/auth/me")
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, store.clearedCount())
}

func TestDecodeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"u-1"}}`))
		case "/null":
			_, _ = w.Write([]byte(`{"code":"OK","message":"ok","data":null}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{}, nil)
	ctx := context.Background()

	resp, err := c.Do(c.R(ctx), http.MethodGet, "/ok")
	require.NoError(t, err)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, DecodeData(resp, &out))
	assert.Equal(t, "u-1", out.ID)

	resp, err = c.Do(c.R(ctx), http.MethodGet, "/null")
	require.NoError(t, err)
	assert.ErrorIs(t, DecodeData(resp, &out), ErrEmptyData)

	resp, err = c.Do(c.R(ctx), http.MethodGet, "/garbage")
	require.NoError(t, err)
	assert.Error(t, DecodeData(resp, &out))
}

func TestClearCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memTokens{}, nil)
	_, err := c.Do(c.R(context.Background()), http.MethodGet, "/")
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Len(t, c.jar.Cookies(u), 1)

	require.NoError(t, c.ClearCookies(context.Background()))
	assert.Empty(t, c.jar.Cookies(u))
}
