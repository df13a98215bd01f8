// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "sync"

// Entity identifies an object that components can be attached to.
// The zero Entity is never issued and is always dead.
type Entity uint32

// EntityManager issues entities and tracks which are alive. Unlike the
// resource registries it is safe for concurrent use, because component
// sweeps consult it from parallel jobs.
type EntityManager struct {
	mu    sync.RWMutex
	next  Entity
	alive map[Entity]struct{}
}

func newEntityManager() *EntityManager {
	return &EntityManager{alive: make(map[Entity]struct{})}
}

// Create issues a new live entity.
func (em *EntityManager) Create() Entity {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.next++
	e := em.next
	em.alive[e] = struct{}{}
	return e
}

// Destroy marks an entity dead. Components attached to it are reclaimed
// by the next garbage-collection pass.
func (em *EntityManager) Destroy(e Entity) {
	em.mu.Lock()
	defer em.mu.Unlock()
	delete(em.alive, e)
}

// Alive reports whether the entity is still live.
func (em *EntityManager) Alive(e Entity) bool {
	em.mu.RLock()
	defer em.mu.RUnlock()
	_, ok := em.alive[e]
	return ok
}

// Count returns the number of live entities.
func (em *EntityManager) Count() int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.alive)
}
