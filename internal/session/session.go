// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the process-wide authentication state: who is signed in,
// whether startup rehydration has finished, and the operations that move the
// session between states (login, logout, account deletion, foreground
// re-validation and login callbacks).
//
// Storage and in-memory state are only ever changed together while opMu is held,
// and opMu is never held across a network call, so a 401 that triggers logout
// from inside a request can always make progress.
package session

import (
	"context"
	"sync"
	"time"

	"bloomi/cli/internal/authhook"
	"bloomi/cli/internal/credstore"
	"bloomi/cli/internal/model"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// State is the session's lifecycle state.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Remote is the subset of the backend the session calls.
type Remote interface {
	GetMe(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context, accessToken string) error
	DeleteAccount(ctx context.Context) error
}

// WebSession clears browser-handshake state such as session cookies.
type WebSession interface {
	ClearCookies(ctx context.Context) error
}

// Snapshot is a point-in-time view handed to subscribers.
type Snapshot struct {
	State State
	User  *model.User
}

// Deps are the collaborators a Manager needs.
type Deps struct {
	Store credstore.Store
	API   Remote
	Hook  *authhook.Hook
	// Web is optional.
	Web    WebSession
	Logger *zap.Logger
	// TaskTimeout bounds detached work (remote logout, re-validation).
	TaskTimeout time.Duration
}

// Manager is the session owner. Create it with New.
type Manager struct {
	store       credstore.Store
	remote      Remote
	hook        *authhook.Hook
	web         WebSession
	logger      *zap.Logger
	validate    *validator.Validate
	taskTimeout time.Duration

	// opMu serializes every change to storage plus memory.
	opMu sync.Mutex

	mu      sync.RWMutex
	user    *model.User
	loading bool
	// gen increments on every login, logout and deletion.
	gen   uint64
	ready chan struct{}

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	tasks sync.WaitGroup
}

// New creates the manager, starts rehydration from the credential store and
// binds the manager's logout to the unauthorized hook.
func New(d Deps) *Manager {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Hook == nil {
		d.Hook = authhook.New()
	}
	if d.TaskTimeout <= 0 {
		d.TaskTimeout = 30 * time.Second
	}
	m := &Manager{
		store:       d.Store,
		remote:      d.API,
		hook:        d.Hook,
		web:         d.Web,
		logger:      d.Logger.Named("session"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		taskTimeout: d.TaskTimeout,
		loading:     true,
		ready:       make(chan struct{}),
		subs:        make(map[int]func(Snapshot)),
	}

	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		m.rehydrate(context.Background())
	}()
	m.hook.Set(m.handleUnauthorized)
	return m
}

// rehydrate restores the session from storage. Both credentials must be
// present and non-empty; anything else, including read errors, ends
// unauthenticated.
func (m *Manager) rehydrate(ctx context.Context) {
	restored := m.loadStored(ctx)
	if restored != nil {
		m.logger.Debug("session restored", zap.String("user_id", restored.ID))
	}
	m.publish()
}

func (m *Manager) loadStored(ctx context.Context) *model.User {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	var restored *model.User
	token, err := m.store.Token(ctx)
	if err != nil {
		m.logger.Warn("failed to load stored token", zap.Error(err))
	} else if token != "" {
		user, err := m.store.User(ctx)
		switch {
		case err != nil:
			m.logger.Warn("failed to load stored user", zap.Error(err))
		case user == nil || user.ID == "":
			m.logger.Debug("stored token has no matching user, treating as signed out")
		default:
			restored = user
		}
	}

	m.mu.Lock()
	m.user = restored
	m.loading = false
	m.mu.Unlock()
	close(m.ready)
	return restored
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	if m == nil || m.ready == nil {
		return StateUninitialized
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// stateLocked must be called with mu held.
func (m *Manager) stateLocked() State {
	switch {
	case m.loading:
		return StateLoading
	case m.user != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userLocked()
}

func (m *Manager) userLocked() *model.User {
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether a user is set.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// IsLoading reports whether startup rehydration is still running.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Ready is closed once rehydration has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until rehydration finishes or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every detached task (rehydration, remote logout,
// re-validation) has finished.
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn is called outside the manager's locks.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Snapshot reads state and user under one lock, so StateAuthenticated always
// comes with a user.
func (m *Manager) Snapshot() Snapshot {
	if m == nil || m.ready == nil {
		return Snapshot{State: StateUninitialized}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.stateLocked(), User: m.userLocked()}
}

func (m *Manager) publish() {
	snap := m.Snapshot()
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// goTask runs fn detached from the caller. Its failures are only logged.
func (m *Manager) goTask(parent context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), m.taskTimeout)
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		defer cancel()
		if err := fn(ctx); err != nil {
			m.logger.Warn(name+" failed", zap.Error(err))
		}
	}()
}
