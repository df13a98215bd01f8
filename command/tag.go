// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

// Tag represents a single-byte command identifier in the encoding stream.
// Tags are organized into groups by their high nibble:
//
//	0x0X: buffer operations
//	0x1X: texture operations
//	0x2X: program operations
//	0x3X: render primitive operations
//	0x4X: swap chain operations
//	0x5X: render target operations
//	0x6X: stream operations
//	0x7X: channel-internal operations
type Tag byte

// Tag constants define all encoding commands.
// Each tag has a fixed operand layout documented in its comment.
const (
	// TagCreateBuffer creates a GPU buffer.
	// Operands: uint64 id, uint64 size, uint32 usage.
	TagCreateBuffer Tag = 0x01

	// TagUpdateBuffer writes bytes into a buffer.
	// Operands: uint64 id, uint64 offset, uint32 length, length bytes.
	TagUpdateBuffer Tag = 0x02

	// TagDestroyBuffer releases a buffer.
	// Operands: uint64 id.
	TagDestroyBuffer Tag = 0x03

	// TagCreateTexture creates a texture.
	// Operands: uint64 id, 5 uint32 (width, height, depth, levels,
	// samples), uint32 format, uint32 usage, byte sampler kind.
	TagCreateTexture Tag = 0x10

	// TagUpdateTexture uploads one mip level.
	// Operands: uint64 id, uint32 level, uint32 length, length bytes.
	TagUpdateTexture Tag = 0x11

	// TagDestroyTexture releases a texture.
	// Operands: uint64 id.
	TagDestroyTexture Tag = 0x12

	// TagCreateProgram creates a shader program.
	// Operands: uint64 id, uint32 length, length bytes of SPIR-V.
	TagCreateProgram Tag = 0x20

	// TagDestroyProgram releases a shader program.
	// Operands: uint64 id.
	TagDestroyProgram Tag = 0x21

	// TagCreatePrimitive creates a render primitive.
	// Operands: uint64 id, uint64 vertex buffer id, uint64 index buffer
	// id, uint32 index count.
	TagCreatePrimitive Tag = 0x30

	// TagDestroyPrimitive releases a render primitive.
	// Operands: uint64 id.
	TagDestroyPrimitive Tag = 0x31

	// TagCreateSwapChain creates a swap chain.
	// Operands: uint64 id, uint64 native window, uint64 flags.
	TagCreateSwapChain Tag = 0x40

	// TagDestroySwapChain releases a swap chain.
	// Operands: uint64 id.
	TagDestroySwapChain Tag = 0x41

	// TagCreateRenderTarget creates a render target.
	// Operands: uint64 id, uint32 width, uint32 height, uint64 color
	// texture id, uint64 depth texture id.
	TagCreateRenderTarget Tag = 0x50

	// TagDestroyRenderTarget releases a render target.
	// Operands: uint64 id.
	TagDestroyRenderTarget Tag = 0x51

	// TagCreateStream creates an external image stream.
	// Operands: uint64 id, uint32 width, uint32 height.
	TagCreateStream Tag = 0x60

	// TagDestroyStream releases an external image stream.
	// Operands: uint64 id.
	TagDestroyStream Tag = 0x61

	// TagSignal satisfies a synchronization token on the execution side.
	// Operands: uint64 token.
	TagSignal Tag = 0x70
)

// String returns a human-readable name for the tag.
func (t Tag) String() string {
	switch t {
	case TagCreateBuffer:
		return "CreateBuffer"
	case TagUpdateBuffer:
		return "UpdateBuffer"
	case TagDestroyBuffer:
		return "DestroyBuffer"
	case TagCreateTexture:
		return "CreateTexture"
	case TagUpdateTexture:
		return "UpdateTexture"
	case TagDestroyTexture:
		return "DestroyTexture"
	case TagCreateProgram:
		return "CreateProgram"
	case TagDestroyProgram:
		return "DestroyProgram"
	case TagCreatePrimitive:
		return "CreatePrimitive"
	case TagDestroyPrimitive:
		return "DestroyPrimitive"
	case TagCreateSwapChain:
		return "CreateSwapChain"
	case TagDestroySwapChain:
		return "DestroySwapChain"
	case TagCreateRenderTarget:
		return "CreateRenderTarget"
	case TagDestroyRenderTarget:
		return "DestroyRenderTarget"
	case TagCreateStream:
		return "CreateStream"
	case TagDestroyStream:
		return "DestroyStream"
	case TagSignal:
		return "Signal"
	default:
		return "Unknown"
	}
}
