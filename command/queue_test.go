// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"sync"
	"testing"
	"time"
)

func TestFlushEmptyIsNoop(t *testing.T) {
	q := NewQueue(64, 256)
	q.Flush()

	if got := q.PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d, want 0", got)
	}
}

func TestFIFOAcrossFlushes(t *testing.T) {
	q := NewQueue(64, 4096)

	q.Append([]byte{1, 2})
	q.Flush()
	q.Append([]byte{3})
	q.Flush()
	q.Append([]byte{4, 5, 6})
	q.Flush()

	bufs := q.WaitForCommands()
	if len(bufs) != 3 {
		t.Fatalf("got %d buffers, want 3", len(bufs))
	}

	var all []byte
	for _, b := range bufs {
		all = append(all, b.Bytes()...)
		q.ReleaseBuffer(b)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (order violated)", i, all[i], want[i])
		}
	}
}

func TestWaitForCommandsBlocksUntilFlush(t *testing.T) {
	q := NewQueue(64, 256)

	done := make(chan []Buffer, 1)
	go func() {
		done <- q.WaitForCommands()
	}()

	select {
	case <-done:
		t.Fatal("WaitForCommands returned with nothing pending")
	case <-time.After(20 * time.Millisecond):
	}

	q.Append([]byte{9})
	q.Flush()

	select {
	case bufs := <-done:
		if len(bufs) != 1 || bufs[0].Size() != 1 {
			t.Fatalf("got %v, want one 1-byte buffer", bufs)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer not woken by Flush")
	}
}

func TestExitReturnsEmptyAfterDrain(t *testing.T) {
	q := NewQueue(64, 256)

	q.Append([]byte{1})
	q.Flush()
	q.RequestExit()

	// First wait drains the pending buffer.
	bufs := q.WaitForCommands()
	if len(bufs) != 1 {
		t.Fatalf("got %d buffers before exit, want 1", len(bufs))
	}
	q.ReleaseBuffer(bufs[0])

	// Second wait observes exit: empty result is the termination signal.
	if bufs := q.WaitForCommands(); len(bufs) != 0 {
		t.Fatalf("got %d buffers after drain, want 0", len(bufs))
	}
	if !q.ExitRequested() {
		t.Error("ExitRequested() = false after RequestExit")
	}
}

func TestBackpressureBlocksProducer(t *testing.T) {
	q := NewQueue(4, 8)

	q.Append(make([]byte, 8))
	q.Flush() // used = 8 = max

	appended := make(chan struct{})
	go func() {
		q.Append(make([]byte, 4)) // must block: 8 + 4 > 8
		close(appended)
	}()

	select {
	case <-appended:
		t.Fatal("producer not blocked at capacity")
	case <-time.After(20 * time.Millisecond):
	}

	bufs := q.WaitForCommands()
	for _, b := range bufs {
		q.ReleaseBuffer(b)
	}

	select {
	case <-appended:
	case <-time.After(time.Second):
		t.Fatal("producer not released after ReleaseBuffer")
	}
}

func TestBackpressureWithNothingOutstanding(t *testing.T) {
	q := NewQueue(4, 8)

	// Nothing flushed yet. Accumulating past the maximum must publish
	// the producer buffer and block, not grow it without bound.
	q.Append(make([]byte, 6))

	appended := make(chan struct{})
	go func() {
		q.Append(make([]byte, 6)) // 6 + 6 > 8
		close(appended)
	}()

	select {
	case <-appended:
		t.Fatal("producer not blocked with write buffer past capacity")
	case <-time.After(20 * time.Millisecond):
	}

	// The first command was published for the consumer to drain.
	bufs := q.WaitForCommands()
	total := 0
	for _, b := range bufs {
		total += b.Size()
		q.ReleaseBuffer(b)
	}
	if total != 6 {
		t.Fatalf("published %d bytes, want 6", total)
	}

	select {
	case <-appended:
	case <-time.After(time.Second):
		t.Fatal("producer not released after drain")
	}
}

func TestOversizedCommandPassesAlone(t *testing.T) {
	q := NewQueue(4, 8)

	// A single command larger than the whole region must not deadlock.
	done := make(chan struct{})
	go func() {
		q.Append(make([]byte, 32))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("oversized command blocked with an empty queue")
	}

	// But the next command waits until the region is drained again.
	q.Flush()
	appended := make(chan struct{})
	go func() {
		q.Append(make([]byte, 4))
		close(appended)
	}()
	select {
	case <-appended:
		t.Fatal("producer not blocked behind the oversized buffer")
	case <-time.After(20 * time.Millisecond):
	}

	for _, b := range q.WaitForCommands() {
		q.ReleaseBuffer(b)
	}
	select {
	case <-appended:
	case <-time.After(time.Second):
		t.Fatal("producer not released after drain")
	}
}

func TestHighWatermark(t *testing.T) {
	q := NewQueue(4, 1024)

	q.Append(make([]byte, 100))
	q.Flush()
	if got := q.HighWatermark(); got != 100 {
		t.Fatalf("HighWatermark() = %d, want 100", got)
	}

	bufs := q.WaitForCommands()
	for _, b := range bufs {
		q.ReleaseBuffer(b)
	}

	// Watermark is monotonic: releasing does not lower it.
	if got := q.HighWatermark(); got != 100 {
		t.Errorf("HighWatermark() after release = %d, want 100", got)
	}

	q.Append(make([]byte, 30))
	q.Flush()
	if got := q.HighWatermark(); got != 100 {
		t.Errorf("HighWatermark() = %d, want 100 (smaller load must not raise it)", got)
	}
}

func TestProducerConsumerStress(t *testing.T) {
	q := NewQueue(16, 64)

	const n = 500
	var got []byte
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			bufs := q.WaitForCommands()
			if len(bufs) == 0 {
				return
			}
			for _, b := range bufs {
				got = append(got, b.Bytes()...)
				q.ReleaseBuffer(b)
			}
		}
	}()

	for i := 0; i < n; i++ {
		q.Append([]byte{byte(i)})
		q.Flush()
	}
	q.RequestExit()
	wg.Wait()

	if len(got) != n {
		t.Fatalf("consumed %d bytes, want %d", len(got), n)
	}
	for i := 0; i < n; i++ {
		if got[i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d (order violated)", i, got[i], byte(i))
		}
	}
}
