// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package authhook

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireWithoutHandler(t *testing.T) {
	h := New()
	assert.False(t, h.IsSet())
	assert.False(t, h.Fire())
}

func TestLatestRegistrationWins(t *testing.T) {
	h := New()
	var first, second int32
	h.Set(func() { atomic.AddInt32(&first, 1) })
	h.Set(func() { atomic.AddInt32(&second, 1) })

	assert.True(t, h.Fire())
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestHandlerMayReplaceItself(t *testing.T) {
	h := New()
	var calls int32
	h.Set(func() {
		atomic.AddInt32(&calls, 1)
		h.Set(nil)
	})

	assert.True(t, h.Fire())
	assert.False(t, h.Fire())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConcurrentFire(t *testing.T) {
	h := New()
	var calls int32
	h.Set(func() { atomic.AddInt32(&calls, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Fire()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(16), atomic.LoadInt32(&calls))
}
