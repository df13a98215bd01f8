// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"slices"
	"sort"
	"sync"
)

// The backend registry maps names to platform constructors. Driver
// packages register themselves from init, so enabling a backend is a
// blank import away:
//
//	import _ "github.com/gogpu/engine/driver/wgpu"
var (
	registryMu sync.RWMutex
	backends   = make(map[string]func() Platform)
)

// defaultOrder ranks backends for Default: hardware first, the noop
// fallback last.
var defaultOrder = []string{"wgpu", "noop"}

// Register makes a platform constructor selectable under name. A later
// registration for the same name wins.
func Register(name string, factory func() Platform) {
	registryMu.Lock()
	backends[name] = factory
	registryMu.Unlock()
}

// Get instantiates the backend registered under name. It returns nil
// when no such backend was linked into the binary.
func Get(name string) Platform {
	registryMu.RLock()
	factory := backends[name]
	registryMu.RUnlock()

	if factory == nil {
		return nil
	}
	return factory()
}

// Default instantiates the most capable linked-in backend: the ranked
// names in order, then any others by name. It returns nil when nothing
// is registered.
func Default() Platform {
	for _, name := range defaultOrder {
		if p := Get(name); p != nil {
			return p
		}
	}
	for _, name := range Available() {
		if slices.Contains(defaultOrder, name) {
			continue
		}
		if p := Get(name); p != nil {
			return p
		}
	}
	return nil
}

// Available reports the linked-in backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
