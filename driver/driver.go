// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Common driver errors.
var (
	// ErrNotAvailable is returned when a requested platform is not registered.
	ErrNotAvailable = errors.New("driver: not available")

	// ErrInitFailed is returned when driver construction fails.
	ErrInitFailed = errors.New("driver: initialization failed")
)

// Resource IDs
//
// These opaque IDs represent backend objects. The engine allocates them
// from a single counter; each driver implementation maintains a mapping
// between IDs and actual backend resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// ProgramID is an opaque handle to a compiled shader program.
type ProgramID uint64

// PrimitiveID is an opaque handle to a render primitive
// (a vertex/index buffer pairing with a draw range).
type PrimitiveID uint64

// SwapChainID is an opaque handle to a swap chain.
type SwapChainID uint64

// RenderTargetID is an opaque handle to an offscreen render target.
type RenderTargetID uint64

// StreamID is an opaque handle to an external image stream.
type StreamID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// SamplerKind selects the sampler dimensionality of a texture.
type SamplerKind uint8

// Sampler kinds.
const (
	Sampler2D SamplerKind = iota
	Sampler2DArray
	SamplerCubemap
	SamplerExternal
	Sampler3D
)

// String returns a human-readable name for the sampler kind.
func (k SamplerKind) String() string {
	switch k {
	case Sampler2D:
		return "2d"
	case Sampler2DArray:
		return "2d-array"
	case SamplerCubemap:
		return "cubemap"
	case SamplerExternal:
		return "external"
	case Sampler3D:
		return "3d"
	default:
		return "unknown"
	}
}

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Depth is the texture depth for 3D textures, or array layer count.
	// Use 1 for regular 2D textures.
	Depth uint32

	// MipLevelCount is the number of mipmap levels. Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage

	// Sampler selects the sampler dimensionality.
	Sampler SamplerKind
}

// RenderTargetDescriptor describes an offscreen render target.
type RenderTargetDescriptor struct {
	Label  string
	Width  uint32
	Height uint32

	// Color is the color attachment. Zero means no color attachment.
	Color TextureID

	// Depth is the depth attachment. Zero means no depth attachment.
	Depth TextureID
}

// Driver is the backend capability set the engine issues decoded
// commands to.
//
// All resource methods are called from the execution role only, strictly
// in command submission order. Allocate and Purge may be called from the
// caller thread and must be safe for that.
type Driver interface {
	// CreateBuffer creates a GPU buffer of the given byte size.
	CreateBuffer(id BufferID, size uint64, usage gputypes.BufferUsage)

	// UpdateBuffer writes data into a buffer at the given byte offset.
	UpdateBuffer(id BufferID, offset uint64, data []byte)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// CreateTexture creates a texture from a descriptor.
	CreateTexture(id TextureID, desc TextureDescriptor)

	// UpdateTexture uploads pixel data for one mip level.
	UpdateTexture(id TextureID, level uint32, data []byte)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// CreateProgram creates a shader program from SPIR-V words encoded
	// as little-endian bytes.
	CreateProgram(id ProgramID, spirv []byte)

	// DestroyProgram releases a shader program.
	DestroyProgram(id ProgramID)

	// CreateRenderPrimitive binds a vertex and index buffer pair into a
	// drawable primitive covering indexCount indices.
	CreateRenderPrimitive(id PrimitiveID, vertices BufferID, indices BufferID, indexCount uint32)

	// DestroyRenderPrimitive releases a render primitive.
	DestroyRenderPrimitive(id PrimitiveID)

	// CreateSwapChain creates a swap chain for a native window handle.
	CreateSwapChain(id SwapChainID, nativeWindow uintptr, flags uint64)

	// DestroySwapChain releases a swap chain.
	DestroySwapChain(id SwapChainID)

	// CreateRenderTarget creates an offscreen render target.
	CreateRenderTarget(id RenderTargetID, desc RenderTargetDescriptor)

	// DestroyRenderTarget releases a render target.
	DestroyRenderTarget(id RenderTargetID)

	// CreateStream creates an external image stream.
	CreateStream(id StreamID, width, height uint32)

	// DestroyStream releases an external image stream.
	DestroyStream(id StreamID)

	// Allocate returns transient memory suitable for encoding small
	// per-frame payloads. The returned slice is valid until the next
	// Purge.
	Allocate(size, align int) []byte

	// Purge releases transient allocations from previous frames.
	Purge()

	// Terminate releases everything the driver owns. The driver must not
	// be used afterwards.
	Terminate()
}

// Platform constructs a Driver and describes its execution constraints.
//
// SingleThreaded platforms cannot run a dedicated execution goroutine;
// the engine then constructs the driver inline and the caller pumps the
// command channel explicitly.
type Platform interface {
	// Name returns the platform identifier (e.g., "noop", "wgpu").
	Name() string

	// CreateDriver constructs the backend driver. The shared context, if
	// non-nil, lends an existing GPU device/queue to the driver instead
	// of creating one.
	CreateDriver(shared gpucontext.DeviceProvider) (Driver, error)

	// SingleThreaded reports whether command execution must happen on
	// the caller's thread.
	SingleThreaded() bool
}
