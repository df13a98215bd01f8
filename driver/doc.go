// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the backend driver abstraction consumed by the
// engine's command executor.
//
// A [Driver] is an opaque capability set: resources are referenced by
// uint64 IDs allocated by the engine, and each driver implementation
// maintains the mapping between IDs and actual backend objects. Driver
// methods do not return errors because they are dispatched asynchronously
// from decoded command buffers; implementations report failures through
// their own logging.
//
// # Platform Registration
//
// Platforms are registered via init() functions and selected at engine
// creation time:
//
//	import _ "github.com/gogpu/engine/driver/noop"
//
//	platform := driver.Get("noop")
//
// Use Default() to get the best available platform, or Get() to request
// a specific one by name.
//
// # Available Platforms
//
//   - "noop": counting no-op driver (always available, used headless and in tests)
//   - "wgpu": GPU-accelerated via gogpu/wgpu
package driver
