// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/engine/driver"
)

// Executor decodes command buffers and dispatches their operations to a
// backend driver, strictly in encoding order, with no reordering or
// batching across buffer boundaries.
//
// The executor holds no resource state of its own. Signal tokens are
// forwarded to the callback installed at construction.
type Executor struct {
	drv    driver.Driver
	signal func(token uint64)
}

// NewExecutor creates an executor dispatching to drv. The signal
// callback receives synchronization tokens; it may be nil when the
// producer never encodes them.
func NewExecutor(drv driver.Driver, signal func(token uint64)) *Executor {
	return &Executor{drv: drv, signal: signal}
}

// Execute decodes and runs one buffer's worth of commands.
// Decoding stops at the first malformed command, which is returned as an
// error; commands decoded before it have already run.
func (x *Executor) Execute(b Buffer) error {
	d := NewDecoder(b)
	for d.Next() {
		switch d.Tag() {
		case TagCreateBuffer:
			id := driver.BufferID(d.U64())
			size := d.U64()
			usage := gputypes.BufferUsage(d.U32())
			x.drv.CreateBuffer(id, size, usage)

		case TagUpdateBuffer:
			id := driver.BufferID(d.U64())
			offset := d.U64()
			data := d.Bytes()
			x.drv.UpdateBuffer(id, offset, data)

		case TagDestroyBuffer:
			x.drv.DestroyBuffer(driver.BufferID(d.U64()))

		case TagCreateTexture:
			id := driver.TextureID(d.U64())
			desc := driver.TextureDescriptor{
				Width:         d.U32(),
				Height:        d.U32(),
				Depth:         d.U32(),
				MipLevelCount: d.U32(),
				SampleCount:   d.U32(),
				Format:        gputypes.TextureFormat(d.U32()),
				Usage:         gputypes.TextureUsage(d.U32()),
				Sampler:       driver.SamplerKind(d.Byte()),
			}
			x.drv.CreateTexture(id, desc)

		case TagUpdateTexture:
			id := driver.TextureID(d.U64())
			level := d.U32()
			data := d.Bytes()
			x.drv.UpdateTexture(id, level, data)

		case TagDestroyTexture:
			x.drv.DestroyTexture(driver.TextureID(d.U64()))

		case TagCreateProgram:
			id := driver.ProgramID(d.U64())
			spirv := d.Bytes()
			x.drv.CreateProgram(id, spirv)

		case TagDestroyProgram:
			x.drv.DestroyProgram(driver.ProgramID(d.U64()))

		case TagCreatePrimitive:
			id := driver.PrimitiveID(d.U64())
			vb := driver.BufferID(d.U64())
			ib := driver.BufferID(d.U64())
			count := d.U32()
			x.drv.CreateRenderPrimitive(id, vb, ib, count)

		case TagDestroyPrimitive:
			x.drv.DestroyRenderPrimitive(driver.PrimitiveID(d.U64()))

		case TagCreateSwapChain:
			id := driver.SwapChainID(d.U64())
			win := uintptr(d.U64())
			flags := d.U64()
			x.drv.CreateSwapChain(id, win, flags)

		case TagDestroySwapChain:
			x.drv.DestroySwapChain(driver.SwapChainID(d.U64()))

		case TagCreateRenderTarget:
			id := driver.RenderTargetID(d.U64())
			desc := driver.RenderTargetDescriptor{
				Width:  d.U32(),
				Height: d.U32(),
				Color:  driver.TextureID(d.U64()),
				Depth:  driver.TextureID(d.U64()),
			}
			x.drv.CreateRenderTarget(id, desc)

		case TagDestroyRenderTarget:
			x.drv.DestroyRenderTarget(driver.RenderTargetID(d.U64()))

		case TagCreateStream:
			id := driver.StreamID(d.U64())
			w := d.U32()
			h := d.U32()
			x.drv.CreateStream(id, w, h)

		case TagDestroyStream:
			x.drv.DestroyStream(driver.StreamID(d.U64()))

		case TagSignal:
			token := d.U64()
			if d.err == nil && x.signal != nil {
				x.signal(token)
			}

		default:
			return fmt.Errorf("command: unknown tag 0x%02x", byte(d.Tag()))
		}

		if err := d.Err(); err != nil {
			return err
		}
	}
	return d.Err()
}
