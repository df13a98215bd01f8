// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package matdbg serves a small HTTP and websocket interface for
// inspecting and editing material parameters of a live engine. It is
// enabled by setting the engine's debug-port environment variable and
// is meant for development builds only.
package matdbg
