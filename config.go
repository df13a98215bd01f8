// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// Process-wide configuration, fixed at build time.
const (
	// MinCommandBufferSize is the starting capacity of the command
	// channel's producer buffer.
	MinCommandBufferSize = 1 << 20 // 1 MiB

	// MaxCommandBufferSize caps the command channel: the producer blocks
	// once this many bytes are outstanding.
	MaxCommandBufferSize = 3 * MinCommandBufferSize

	// PerFrameArenaSize is the scratch arena drivers reserve for
	// transient per-frame allocations.
	PerFrameArenaSize = 2 << 20 // 2 MiB

	// MaxStreamAllocSize limits StreamAlloc requests; larger asks get
	// nil so callers fall back to their own allocation.
	MaxStreamAllocSize = 1024
)

// DebugPortEnv names the environment variable that, when set to a port
// number, enables the material debug server.
const DebugPortEnv = "ENGINE_DEBUG_PORT"
