// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logMu sync.RWMutex
	log   = zap.NewNop()
)

func logger() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// SetLogger routes driver diagnostics to l. Pass nil to silence them.
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}
