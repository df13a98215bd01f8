// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"sync"
)

// Buffer is an immutable, ordered range of encoded commands.
// It is produced once by a flush and consumed exactly once.
type Buffer struct {
	data []byte
}

// Bytes returns the encoded command bytes.
func (b Buffer) Bytes() []byte { return b.data }

// Size returns the buffer length in bytes.
func (b Buffer) Size() int { return len(b.data) }

// Queue is the bounded command channel between exactly one producer
// (the caller thread encoding commands) and exactly one consumer (the
// execution role).
//
// The channel region may grow up to the configured maximum; beyond that
// the producer blocks until the consumer releases buffers. Ordering is
// strict FIFO with no priority or cancellation of in-flight buffers.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	minSize int
	maxSize int

	// write is the current producer buffer; commands are appended here
	// until the next Flush.
	write []byte

	// pending holds flushed buffers not yet picked up by the consumer.
	pending []Buffer

	// used counts bytes flushed but not yet released by the consumer.
	used int

	highWatermark int
	exitRequested bool
}

// NewQueue creates a queue with the given minimum and maximum byte
// capacity. The producer buffer starts at minSize; total outstanding
// bytes never exceed maxSize.
func NewQueue(minSize, maxSize int) *Queue {
	if minSize <= 0 {
		minSize = 1
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	q := &Queue{
		minSize: minSize,
		maxSize: maxSize,
		write:   make([]byte, 0, minSize),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Append copies one whole encoded command into the channel's producer
// buffer. If accepting it would exceed the maximum capacity, Append
// publishes what has accumulated so the consumer can drain it, then
// blocks until enough space is released (backpressure). Outstanding
// bytes never exceed the maximum, with one exception: a single command
// larger than the whole region is let through rather than deadlocking.
func (q *Queue) Append(op []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.used+len(q.write)+len(op) > q.maxSize {
		if len(q.write) > 0 {
			q.publishLocked()
			continue
		}
		if q.used == 0 {
			// op alone exceeds the region; it occupies all of it.
			break
		}
		q.cond.Wait()
	}

	q.write = append(q.write, op...)
	if w := q.used + len(q.write); w > q.highWatermark {
		q.highWatermark = w
	}
}

// Flush publishes the accumulated producer buffer to the consumer and
// starts a new one. Flushing an empty buffer is a no-op.
func (q *Queue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.write) == 0 {
		return
	}
	q.publishLocked()
}

// publishLocked hands the producer buffer to the consumer side.
// Caller holds q.mu and guarantees the buffer is non-empty.
func (q *Queue) publishLocked() {
	q.pending = append(q.pending, Buffer{data: q.write})
	q.used += len(q.write)
	q.write = make([]byte, 0, q.minSize)
	q.cond.Broadcast()
}

// WaitForCommands blocks until at least one buffer is pending or exit
// has been requested. It returns the pending buffers in submission
// order; the result is empty exactly when exit was requested and the
// queue has drained, which is the consumer loop's termination signal.
func (q *Queue) WaitForCommands() []Buffer {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && !q.exitRequested {
		q.cond.Wait()
	}

	bufs := q.pending
	q.pending = nil
	return bufs
}

// ReleaseBuffer returns a consumed buffer's space to the channel,
// waking a producer blocked on backpressure.
func (q *Queue) ReleaseBuffer(b Buffer) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.used -= b.Size()
	if q.used < 0 {
		q.used = 0
	}
	q.cond.Broadcast()
}

// RequestExit marks the channel for termination and wakes the consumer.
// Pending buffers still drain before WaitForCommands reports exit.
func (q *Queue) RequestExit() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.exitRequested = true
	q.cond.Broadcast()
}

// ExitRequested reports whether RequestExit has been called.
func (q *Queue) ExitRequested() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.exitRequested
}

// HighWatermark returns the peak number of outstanding bytes observed,
// for capacity tuning.
func (q *Queue) HighWatermark() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.highWatermark
}

// PendingCount returns the number of flushed buffers awaiting the
// consumer.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
