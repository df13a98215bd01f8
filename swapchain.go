// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "github.com/gogpu/engine/driver"

// Swap chain configuration flags.
const (
	SwapChainTransparent uint64 = 1 << 0
	SwapChainReadable    uint64 = 1 << 1
)

// SwapChain owns the backend presentation surface for one native
// window.
type SwapChain struct {
	engine       *Engine
	handle       driver.SwapChainID
	nativeWindow uintptr
	flags        uint64
}

// CreateSwapChain allocates a presentation surface for nativeWindow.
func (e *Engine) CreateSwapChain(nativeWindow uintptr, flags uint64) *SwapChain {
	e.checkValid()
	id := driver.SwapChainID(e.nextResourceID())
	e.enc.CreateSwapChain(id, nativeWindow, flags)
	sc := &SwapChain{engine: e, handle: id, nativeWindow: nativeWindow, flags: flags}
	e.swapChains.insert(sc)
	return sc
}

// NativeWindow returns the window handle the swap chain was created
// for.
func (sc *SwapChain) NativeWindow() uintptr { return sc.nativeWindow }

// Flags returns the configuration flags.
func (sc *SwapChain) Flags() uint64 { return sc.flags }

func (sc *SwapChain) kindName() string { return "swap chain" }

func (sc *SwapChain) terminate(e *Engine) {
	e.enc.DestroySwapChain(sc.handle)
	sc.handle = 0
}
