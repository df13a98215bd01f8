// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"
	"time"
)

// ErrFenceTimeout is returned by [Fence.WaitTimeout] when the deadline
// passes before the fence signals.
var ErrFenceTimeout = errors.New("engine: fence wait timed out")

// Fence resolves once the driver thread has executed every command
// submitted before the fence was created. Wait may be called from any
// goroutine.
type Fence struct {
	engine *Engine
	token  uint64
	done   chan struct{}
}

// CreateFence inserts a fence into the command stream. The returned
// fence signals after all previously submitted commands execute.
// The commands are not flushed; call [Engine.Flush] or use
// [Engine.FlushAndWait].
func (e *Engine) CreateFence() *Fence {
	e.checkValid()
	f := &Fence{engine: e, done: make(chan struct{})}
	f.token = e.registerFence(f)
	e.enc.Signal(f.token)
	e.fences.insert(f)
	return f
}

// Wait blocks until the fence signals.
func (f *Fence) Wait() {
	<-f.done
}

// WaitTimeout blocks until the fence signals or the timeout passes.
func (f *Fence) WaitTimeout(d time.Duration) error {
	select {
	case <-f.done:
		return nil
	case <-time.After(d):
		return ErrFenceTimeout
	}
}

// Signaled reports whether the fence has already resolved.
func (f *Fence) Signaled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Fence) kindName() string { return "fence" }

func (f *Fence) terminate(e *Engine) {
	e.dropFence(f.token)
}
