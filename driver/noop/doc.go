// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package noop provides a no-op driver that tracks resource counts
// without touching any GPU.
//
// The noop platform is always available and is registered on import:
//
//	import _ "github.com/gogpu/engine/driver/noop"
//
// It backs headless engine use and tests: every create has to be matched
// by a destroy, and [Driver.Counts] exposes the live object census so
// callers can assert leak-free teardown.
package noop
