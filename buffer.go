// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"

	"github.com/gogpu/engine/driver"
	"github.com/gogpu/gputypes"
)

// AttributeType describes the element type of one vertex attribute.
type AttributeType uint8

const (
	AttributeFloat AttributeType = iota
	AttributeFloat2
	AttributeFloat3
	AttributeFloat4
	AttributeUByte4
	AttributeUShort2
)

// byteSize returns the size of one element of the attribute type.
func (t AttributeType) byteSize() uint32 {
	switch t {
	case AttributeFloat:
		return 4
	case AttributeFloat2:
		return 8
	case AttributeFloat3:
		return 12
	case AttributeFloat4:
		return 16
	case AttributeUByte4:
		return 4
	case AttributeUShort2:
		return 4
	default:
		return 0
	}
}

// VertexAttribute names a predefined attribute slot.
type VertexAttribute uint8

const (
	AttrPosition VertexAttribute = iota
	AttrTangents
	AttrColor
	AttrUV0
	AttrUV1
	attrCount
)

// AttributeEntry records where one attribute lives inside the buffer
// set.
type AttributeEntry struct {
	Buffer uint8
	Offset uint32
	Stride uint32
	Type   AttributeType
}

// VertexBuffer owns one backend buffer per declared buffer slot.
// Geometry data is supplied per slot with [VertexBuffer.SetBufferAt].
type VertexBuffer struct {
	engine      *Engine
	handles     []driverBufferSlot
	attributes  map[VertexAttribute]AttributeEntry
	vertexCount uint32
}

type driverBufferSlot struct {
	id   driver.BufferID
	size uint64
}

// VertexBufferBuilder accumulates the layout of a vertex buffer.
// Zero value is not usable; obtain one from [NewVertexBufferBuilder].
type VertexBufferBuilder struct {
	vertexCount uint32
	bufferCount uint8
	attributes  map[VertexAttribute]AttributeEntry
}

// NewVertexBufferBuilder returns an empty builder.
func NewVertexBufferBuilder() *VertexBufferBuilder {
	return &VertexBufferBuilder{attributes: make(map[VertexAttribute]AttributeEntry)}
}

// VertexCount sets the number of vertices the buffer will hold.
func (b *VertexBufferBuilder) VertexCount(n uint32) *VertexBufferBuilder {
	b.vertexCount = n
	return b
}

// BufferCount sets how many backing buffer slots the layout uses.
func (b *VertexBufferBuilder) BufferCount(n uint8) *VertexBufferBuilder {
	b.bufferCount = n
	return b
}

// Attribute declares where attr lives: which buffer slot, at what byte
// offset, with what stride. A zero stride means tightly packed.
func (b *VertexBufferBuilder) Attribute(attr VertexAttribute, buffer uint8, typ AttributeType, offset, stride uint32) *VertexBufferBuilder {
	if stride == 0 {
		stride = typ.byteSize()
	}
	b.attributes[attr] = AttributeEntry{Buffer: buffer, Offset: offset, Stride: stride, Type: typ}
	return b
}

// Build allocates the backend buffers and registers the vertex buffer
// with the engine.
func (b *VertexBufferBuilder) Build(e *Engine) (*VertexBuffer, error) {
	e.checkValid()
	if b.vertexCount == 0 {
		return nil, fmt.Errorf("%w: vertex count is zero", ErrInvalidArgument)
	}
	if b.bufferCount == 0 {
		return nil, fmt.Errorf("%w: buffer count is zero", ErrInvalidArgument)
	}
	for attr, entry := range b.attributes {
		if entry.Buffer >= b.bufferCount {
			return nil, fmt.Errorf("%w: attribute %d references buffer %d of %d",
				ErrInvalidArgument, attr, entry.Buffer, b.bufferCount)
		}
	}

	// Slot size is the largest extent any attribute reaches in it.
	sizes := make([]uint64, b.bufferCount)
	for _, entry := range b.attributes {
		end := uint64(entry.Offset) + uint64(entry.Stride)*uint64(b.vertexCount)
		if end > sizes[entry.Buffer] {
			sizes[entry.Buffer] = end
		}
	}

	vb := &VertexBuffer{
		engine:      e,
		handles:     make([]driverBufferSlot, b.bufferCount),
		attributes:  make(map[VertexAttribute]AttributeEntry, len(b.attributes)),
		vertexCount: b.vertexCount,
	}
	for k, v := range b.attributes {
		vb.attributes[k] = v
	}
	for i := range vb.handles {
		size := sizes[i]
		if size == 0 {
			size = uint64(b.vertexCount) * 4
		}
		id := driver.BufferID(e.nextResourceID())
		e.enc.CreateBuffer(id, size, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		vb.handles[i] = driverBufferSlot{id: id, size: size}
	}
	e.vertexBuffers.insert(vb)
	return vb, nil
}

// VertexCount reports how many vertices the buffer holds.
func (vb *VertexBuffer) VertexCount() uint32 { return vb.vertexCount }

// BufferCount reports the number of backing buffer slots.
func (vb *VertexBuffer) BufferCount() int { return len(vb.handles) }

// SetBufferAt uploads data into buffer slot index at byte offset.
func (vb *VertexBuffer) SetBufferAt(e *Engine, index uint8, offset uint64, data []byte) error {
	e.checkValid()
	if int(index) >= len(vb.handles) {
		return fmt.Errorf("%w: buffer index %d of %d", ErrInvalidArgument, index, len(vb.handles))
	}
	slot := vb.handles[index]
	if offset+uint64(len(data)) > slot.size {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds buffer size %d",
			ErrInvalidArgument, len(data), offset, slot.size)
	}
	e.enc.UpdateBuffer(slot.id, offset, data)
	return nil
}

func (vb *VertexBuffer) kindName() string { return "vertex buffer" }

func (vb *VertexBuffer) terminate(e *Engine) {
	for _, slot := range vb.handles {
		e.enc.DestroyBuffer(slot.id)
	}
	vb.handles = nil
}

// IndexType selects the element width of an index buffer.
type IndexType uint8

const (
	IndexUShort IndexType = iota // 16-bit indices
	IndexUInt                    // 32-bit indices
)

func (t IndexType) byteSize() uint64 {
	if t == IndexUInt {
		return 4
	}
	return 2
}

// IndexBuffer owns one backend buffer of 16- or 32-bit indices.
type IndexBuffer struct {
	engine     *Engine
	handle     driver.BufferID
	size       uint64
	indexCount uint32
	indexType  IndexType
}

// IndexBufferBuilder accumulates index buffer configuration.
type IndexBufferBuilder struct {
	indexCount uint32
	indexType  IndexType
}

// NewIndexBufferBuilder returns a builder defaulting to 16-bit indices.
func NewIndexBufferBuilder() *IndexBufferBuilder {
	return &IndexBufferBuilder{indexType: IndexUShort}
}

// IndexCount sets the number of indices.
func (b *IndexBufferBuilder) IndexCount(n uint32) *IndexBufferBuilder {
	b.indexCount = n
	return b
}

// Type sets the index element width.
func (b *IndexBufferBuilder) Type(t IndexType) *IndexBufferBuilder {
	b.indexType = t
	return b
}

// Build allocates the backend buffer and registers the index buffer.
func (b *IndexBufferBuilder) Build(e *Engine) (*IndexBuffer, error) {
	e.checkValid()
	if b.indexCount == 0 {
		return nil, fmt.Errorf("%w: index count is zero", ErrInvalidArgument)
	}
	size := uint64(b.indexCount) * b.indexType.byteSize()
	id := driver.BufferID(e.nextResourceID())
	e.enc.CreateBuffer(id, size, gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	ib := &IndexBuffer{engine: e, handle: id, size: size, indexCount: b.indexCount, indexType: b.indexType}
	e.indexBuffers.insert(ib)
	return ib, nil
}

// IndexCount reports how many indices the buffer holds.
func (ib *IndexBuffer) IndexCount() uint32 { return ib.indexCount }

// Type reports the index element width.
func (ib *IndexBuffer) Type() IndexType { return ib.indexType }

// SetBuffer uploads index data at byte offset.
func (ib *IndexBuffer) SetBuffer(e *Engine, offset uint64, data []byte) error {
	e.checkValid()
	if offset+uint64(len(data)) > ib.size {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds buffer size %d",
			ErrInvalidArgument, len(data), offset, ib.size)
	}
	e.enc.UpdateBuffer(ib.handle, offset, data)
	return nil
}

func (ib *IndexBuffer) kindName() string { return "index buffer" }

func (ib *IndexBuffer) terminate(e *Engine) {
	e.enc.DestroyBuffer(ib.handle)
	ib.handle = 0
}
