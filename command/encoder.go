// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/engine/driver"
)

// Encoder translates driver operations into the channel's byte encoding.
// One encoder belongs to exactly one queue and one producer thread; it
// is not safe for concurrent use.
//
// Each method appends one whole command atomically, so a consumer never
// observes a partially encoded operation.
type Encoder struct {
	q       *Queue
	scratch []byte
}

// NewEncoder creates an encoder producing into q.
func NewEncoder(q *Queue) *Encoder {
	return &Encoder{q: q, scratch: make([]byte, 0, 64)}
}

func (e *Encoder) begin(t Tag) {
	e.scratch = append(e.scratch[:0], byte(t))
}

func (e *Encoder) u32(v uint32) {
	e.scratch = binary.LittleEndian.AppendUint32(e.scratch, v)
}

func (e *Encoder) u64(v uint64) {
	e.scratch = binary.LittleEndian.AppendUint64(e.scratch, v)
}

func (e *Encoder) bytes(p []byte) {
	e.u32(uint32(len(p)))
	e.scratch = append(e.scratch, p...)
}

func (e *Encoder) commit() {
	e.q.Append(e.scratch)
}

// CreateBuffer encodes a buffer creation.
func (e *Encoder) CreateBuffer(id driver.BufferID, size uint64, usage gputypes.BufferUsage) {
	e.begin(TagCreateBuffer)
	e.u64(uint64(id))
	e.u64(size)
	e.u32(uint32(usage))
	e.commit()
}

// UpdateBuffer encodes a buffer write. The data is copied into the
// channel, so the caller may reuse its slice immediately.
func (e *Encoder) UpdateBuffer(id driver.BufferID, offset uint64, data []byte) {
	e.begin(TagUpdateBuffer)
	e.u64(uint64(id))
	e.u64(offset)
	e.bytes(data)
	e.commit()
}

// DestroyBuffer encodes a buffer release.
func (e *Encoder) DestroyBuffer(id driver.BufferID) {
	e.begin(TagDestroyBuffer)
	e.u64(uint64(id))
	e.commit()
}

// CreateTexture encodes a texture creation.
func (e *Encoder) CreateTexture(id driver.TextureID, desc driver.TextureDescriptor) {
	e.begin(TagCreateTexture)
	e.u64(uint64(id))
	e.u32(desc.Width)
	e.u32(desc.Height)
	e.u32(desc.Depth)
	e.u32(desc.MipLevelCount)
	e.u32(desc.SampleCount)
	e.u32(uint32(desc.Format))
	e.u32(uint32(desc.Usage))
	e.scratch = append(e.scratch, byte(desc.Sampler))
	e.commit()
}

// UpdateTexture encodes a mip level upload.
func (e *Encoder) UpdateTexture(id driver.TextureID, level uint32, data []byte) {
	e.begin(TagUpdateTexture)
	e.u64(uint64(id))
	e.u32(level)
	e.bytes(data)
	e.commit()
}

// DestroyTexture encodes a texture release.
func (e *Encoder) DestroyTexture(id driver.TextureID) {
	e.begin(TagDestroyTexture)
	e.u64(uint64(id))
	e.commit()
}

// CreateProgram encodes a shader program creation.
func (e *Encoder) CreateProgram(id driver.ProgramID, spirv []byte) {
	e.begin(TagCreateProgram)
	e.u64(uint64(id))
	e.bytes(spirv)
	e.commit()
}

// DestroyProgram encodes a shader program release.
func (e *Encoder) DestroyProgram(id driver.ProgramID) {
	e.begin(TagDestroyProgram)
	e.u64(uint64(id))
	e.commit()
}

// CreateRenderPrimitive encodes a render primitive creation.
func (e *Encoder) CreateRenderPrimitive(id driver.PrimitiveID, vertices, indices driver.BufferID, indexCount uint32) {
	e.begin(TagCreatePrimitive)
	e.u64(uint64(id))
	e.u64(uint64(vertices))
	e.u64(uint64(indices))
	e.u32(indexCount)
	e.commit()
}

// DestroyRenderPrimitive encodes a render primitive release.
func (e *Encoder) DestroyRenderPrimitive(id driver.PrimitiveID) {
	e.begin(TagDestroyPrimitive)
	e.u64(uint64(id))
	e.commit()
}

// CreateSwapChain encodes a swap chain creation.
func (e *Encoder) CreateSwapChain(id driver.SwapChainID, nativeWindow uintptr, flags uint64) {
	e.begin(TagCreateSwapChain)
	e.u64(uint64(id))
	e.u64(uint64(nativeWindow))
	e.u64(flags)
	e.commit()
}

// DestroySwapChain encodes a swap chain release.
func (e *Encoder) DestroySwapChain(id driver.SwapChainID) {
	e.begin(TagDestroySwapChain)
	e.u64(uint64(id))
	e.commit()
}

// CreateRenderTarget encodes a render target creation.
func (e *Encoder) CreateRenderTarget(id driver.RenderTargetID, desc driver.RenderTargetDescriptor) {
	e.begin(TagCreateRenderTarget)
	e.u64(uint64(id))
	e.u32(desc.Width)
	e.u32(desc.Height)
	e.u64(uint64(desc.Color))
	e.u64(uint64(desc.Depth))
	e.commit()
}

// DestroyRenderTarget encodes a render target release.
func (e *Encoder) DestroyRenderTarget(id driver.RenderTargetID) {
	e.begin(TagDestroyRenderTarget)
	e.u64(uint64(id))
	e.commit()
}

// CreateStream encodes an external image stream creation.
func (e *Encoder) CreateStream(id driver.StreamID, width, height uint32) {
	e.begin(TagCreateStream)
	e.u64(uint64(id))
	e.u32(width)
	e.u32(height)
	e.commit()
}

// DestroyStream encodes an external image stream release.
func (e *Encoder) DestroyStream(id driver.StreamID) {
	e.begin(TagDestroyStream)
	e.u64(uint64(id))
	e.commit()
}

// Signal encodes a synchronization token to be satisfied on the
// execution side after every previously encoded command has run.
func (e *Encoder) Signal(token uint64) {
	e.begin(TagSignal)
	e.u64(token)
	e.commit()
}
