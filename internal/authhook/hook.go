// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package authhook provides the single-slot publish point the HTTP client uses to
// report an authentication failure to whoever owns the session.
//
// The hook is created before both the HTTP client and the session manager, handed
// to the client at construction and bound by the session manager once it exists.
package authhook

import "sync"

// Hook holds at most one unauthorized handler. The latest Set wins.
type Hook struct {
	mu      sync.RWMutex
	handler func()
}

// New returns a hook with no handler registered.
func New() *Hook {
	return &Hook{}
}

// Set replaces the registered handler. Passing nil leaves the hook unset.
func (h *Hook) Set(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// IsSet reports whether a handler is registered.
func (h *Hook) IsSet() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler != nil
}

// Fire invokes the registered handler and reports whether one ran.
// The handler is called outside the lock so it may call Set itself.
func (h *Hook) Fire() bool {
	h.mu.RLock()
	fn := h.handler
	h.mu.RUnlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
