// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package job provides a small parallel task system with parent/child
// joining.
//
// Jobs form a tree: a parent completes only when its own function and
// every descendant have finished. [System.RunAndWait] blocks the caller
// until the given job's whole subtree is done, which is how the engine
// fans independent sweeps out across workers while staying synchronous
// at its API surface.
package job

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is a unit of work, optionally parented to another job.
type Job struct {
	sys    *System
	parent *Job
	fn     func()

	// pending counts the job's own run plus unfinished children.
	pending atomic.Int32
	done    chan struct{}
}

// Done returns a channel closed when the job's subtree has completed.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) finish() {
	if j.pending.Add(-1) == 0 {
		close(j.done)
		if j.parent != nil {
			j.parent.finish()
		}
	}
}

// System schedules jobs across a fixed pool of worker goroutines.
type System struct {
	queue chan *Job
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewSystem creates a system with the given number of workers.
// A count of zero or less uses GOMAXPROCS.
func NewSystem(workers int) *System {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &System{queue: make(chan *Job, 64)}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

func (s *System) worker() {
	defer s.wg.Done()
	for j := range s.queue {
		s.exec(j)
	}
}

func (s *System) exec(j *Job) {
	if j.fn != nil {
		j.fn()
	}
	j.finish()
}

// CreateJob creates a job with an optional parent and an optional
// function. A nil-function job is a pure join point for its children.
// The parent must not have been waited on yet.
func (s *System) CreateJob(parent *Job, fn func()) *Job {
	j := &Job{sys: s, parent: parent, fn: fn, done: make(chan struct{})}
	j.pending.Store(1)
	if parent != nil {
		parent.pending.Add(1)
	}
	return j
}

// Run submits a job for asynchronous execution.
func (s *System) Run(j *Job) {
	s.queue <- j
}

// RunAndWait retires the job's own run slot (executing its function
// inline if it has one) and blocks until the job and all of its
// children have completed.
func (s *System) RunAndWait(j *Job) {
	s.exec(j)
	<-j.done
}

// Shutdown stops the workers after the queue drains. Jobs submitted
// after Shutdown panic; callers are expected to shut down once, after
// all producers have stopped.
func (s *System) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}
