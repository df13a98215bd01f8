// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"

	"go.uber.org/zap"
)

// Resource errors.
var (
	// ErrNotOwned is returned when destroying an object the engine does
	// not own: either it was already destroyed or it belongs to another
	// engine. The operation is a no-op.
	ErrNotOwned = errors.New("engine: resource not owned by this engine")

	// ErrLiveInstances is returned when destroying a material that still
	// has live instances. The material is left intact.
	ErrLiveInstances = errors.New("engine: material still has live instances")

	// ErrInvalidArgument is returned by builders given out-of-range
	// configuration.
	ErrInvalidArgument = errors.New("engine: invalid argument")
)

// Resource is implemented by every engine-managed object: vertex and
// index buffers, textures, materials and their instances, scenes,
// views, renderers, fences, swap chains, render targets, streams,
// skyboxes and indirect lights.
//
// A Resource pointer is valid only while the engine owns it; after
// [Engine.Destroy] it must not be used again.
type Resource interface {
	// kindName identifies the resource kind in logs and errors.
	kindName() string

	// terminate releases backend handles. Called exactly once, from the
	// engine's owner thread, after the resource left its registry.
	terminate(e *Engine)
}

// resourceList is a per-kind ownership set keyed by identity.
// It is mutated only from the thread owning the engine; this is a
// deliberate simplification, not an oversight.
type resourceList[T comparable] struct {
	items map[T]struct{}
}

func (l *resourceList[T]) insert(v T) {
	if l.items == nil {
		l.items = make(map[T]struct{})
	}
	l.items[v] = struct{}{}
}

// remove deletes v and reports whether it was present.
func (l *resourceList[T]) remove(v T) bool {
	if _, ok := l.items[v]; !ok {
		return false
	}
	delete(l.items, v)
	return true
}

func (l *resourceList[T]) contains(v T) bool {
	_, ok := l.items[v]
	return ok
}

func (l *resourceList[T]) size() int { return len(l.items) }

// takeAll moves the whole set out (copy-and-clear). Used only during
// the shutdown sweep.
func (l *resourceList[T]) takeAll() []T {
	out := make([]T, 0, len(l.items))
	for v := range l.items {
		out = append(out, v)
	}
	l.items = nil
	return out
}

// owned constrains the generic destroy/cleanup helpers to registry
// value types.
type owned interface {
	Resource
	comparable
}

// destroyFrom implements the destroy protocol for one registry: remove
// by identity, then run the termination hook. Unknown identities are a
// logged no-op reported as ErrNotOwned; covers double-destroy and
// destroy-of-foreign-pointer without corrupting registry state.
func destroyFrom[T owned](e *Engine, list *resourceList[T], r T) error {
	if !list.remove(r) {
		Logger().Debug("destroy of unknown resource",
			zap.String("kind", r.kindName()))
		return ErrNotOwned
	}
	r.terminate(e)
	return nil
}

// cleanupList force-terminates every entry left in a registry at
// shutdown, logging the leak count. This keeps create/destroy pairs
// matched on the driver regardless of caller discipline.
func cleanupList[T owned](e *Engine, list *resourceList[T], kind string) {
	if list.size() == 0 {
		return
	}
	Logger().Debug("cleaning up leaked resources",
		zap.String("kind", kind),
		zap.Int("count", list.size()))
	for _, item := range list.takeAll() {
		item.terminate(e)
	}
}
