// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gogpu/engine/driver"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func init() {
	driver.Register("wgpu", func() driver.Platform { return &Platform{} })
}

// Platform opens HAL devices for the engine.
type Platform struct{}

// Name returns "wgpu".
func (p *Platform) Name() string { return "wgpu" }

// SingleThreaded reports false: HAL devices are driven from a
// dedicated goroutine.
func (p *Platform) SingleThreaded() bool { return false }

// CreateDriver adopts the device of shared when it exposes HAL types,
// and otherwise opens a standalone Vulkan device.
func (p *Platform) CreateDriver(shared gpucontext.DeviceProvider) (driver.Driver, error) {
	d := &Driver{
		buffers:  make(map[driver.BufferID]hal.Buffer),
		textures: make(map[driver.TextureID]texture),
		programs: make(map[driver.ProgramID]hal.ShaderModule),
		prims:    make(map[driver.PrimitiveID]primitive),
		chains:   make(map[driver.SwapChainID]swapChain),
		targets:  make(map[driver.RenderTargetID]driver.RenderTargetDescriptor),
		streams:  make(map[driver.StreamID]stream),
	}
	if shared != nil {
		if err := d.adoptDevice(shared); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := d.openDevice(); err != nil {
		return nil, err
	}
	return d, nil
}

type texture struct {
	tex  hal.Texture
	desc driver.TextureDescriptor
}

type primitive struct {
	vertices   driver.BufferID
	indices    driver.BufferID
	indexCount uint32
}

type swapChain struct {
	nativeWindow uintptr
	flags        uint64
}

type stream struct {
	width  uint32
	height uint32
}

// Driver maps engine resource IDs to HAL objects. Methods run on the
// engine's driver goroutine; the mutex only guards against Purge and
// Allocate callers on the engine thread.
type Driver struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adopted  bool

	mu       sync.Mutex
	buffers  map[driver.BufferID]hal.Buffer
	textures map[driver.TextureID]texture
	programs map[driver.ProgramID]hal.ShaderModule
	prims    map[driver.PrimitiveID]primitive
	chains   map[driver.SwapChainID]swapChain
	targets  map[driver.RenderTargetID]driver.RenderTargetDescriptor
	streams  map[driver.StreamID]stream
}

// adoptDevice borrows HAL device and queue from an external provider,
// matching the optional interface gogpu providers expose.
func (d *Driver) adoptDevice(shared gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := any(shared).(halProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL types", driver.ErrInitFailed)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: provider HalDevice is not hal.Device", driver.ErrInitFailed)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: provider HalQueue is not hal.Queue", driver.ErrInitFailed)
	}
	d.device = device
	d.queue = queue
	d.adopted = true
	return nil
}

// openDevice brings up a standalone Vulkan device, preferring discrete
// then integrated adapters.
func (d *Driver) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", driver.ErrNotAvailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %v", driver.ErrInitFailed, err)
	}
	d.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		d.instance = nil
		return fmt.Errorf("%w: no GPU adapters found", driver.ErrNotAvailable)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		d.instance = nil
		return fmt.Errorf("%w: open device: %v", driver.ErrInitFailed, err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue
	logger().Info("wgpu driver initialized", zap.String("adapter", selected.Info.Name))
	return nil
}

func (d *Driver) CreateBuffer(id driver.BufferID, size uint64, usage gputypes.BufferUsage) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		logger().Error("create buffer failed", zap.Uint64("id", uint64(id)), zap.Error(err))
		return
	}
	d.mu.Lock()
	d.buffers[id] = buf
	d.mu.Unlock()
}

func (d *Driver) UpdateBuffer(id driver.BufferID, offset uint64, data []byte) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	d.mu.Unlock()
	if !ok {
		logger().Warn("update of unknown buffer", zap.Uint64("id", uint64(id)))
		return
	}
	d.queue.WriteBuffer(buf, offset, data)
}

func (d *Driver) DestroyBuffer(id driver.BufferID) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyBuffer(buf)
	}
}

func (d *Driver) CreateTexture(id driver.TextureID, desc driver.TextureDescriptor) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Depth,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		logger().Error("create texture failed",
			zap.Uint64("id", uint64(id)), zap.String("label", desc.Label), zap.Error(err))
		return
	}
	d.mu.Lock()
	d.textures[id] = texture{tex: tex, desc: desc}
	d.mu.Unlock()
}

func (d *Driver) UpdateTexture(id driver.TextureID, level uint32, data []byte) {
	d.mu.Lock()
	t, ok := d.textures[id]
	d.mu.Unlock()
	if !ok {
		logger().Warn("update of unknown texture", zap.Uint64("id", uint64(id)))
		return
	}
	w := mipExtent(t.desc.Width, level)
	h := mipExtent(t.desc.Height, level)
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: level,
			Origin:   hal.Origin3D{},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * texelBytes(t.desc.Format),
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: t.desc.Depth},
	)
}

func (d *Driver) DestroyTexture(id driver.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyTexture(t.tex)
	}
}

func (d *Driver) CreateProgram(id driver.ProgramID, spirv []byte) {
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[4*i:])
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		logger().Error("create program failed", zap.Uint64("id", uint64(id)), zap.Error(err))
		return
	}
	d.mu.Lock()
	d.programs[id] = module
	d.mu.Unlock()
}

func (d *Driver) DestroyProgram(id driver.ProgramID) {
	d.mu.Lock()
	module, ok := d.programs[id]
	delete(d.programs, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyShaderModule(module)
	}
}

func (d *Driver) CreateRenderPrimitive(id driver.PrimitiveID, vertices, indices driver.BufferID, indexCount uint32) {
	d.mu.Lock()
	d.prims[id] = primitive{vertices: vertices, indices: indices, indexCount: indexCount}
	d.mu.Unlock()
}

func (d *Driver) DestroyRenderPrimitive(id driver.PrimitiveID) {
	d.mu.Lock()
	delete(d.prims, id)
	d.mu.Unlock()
}

func (d *Driver) CreateSwapChain(id driver.SwapChainID, nativeWindow uintptr, flags uint64) {
	// Surface creation is window-system specific and supplied by the
	// presentation layer; the driver only tracks the association.
	d.mu.Lock()
	d.chains[id] = swapChain{nativeWindow: nativeWindow, flags: flags}
	d.mu.Unlock()
}

func (d *Driver) DestroySwapChain(id driver.SwapChainID) {
	d.mu.Lock()
	delete(d.chains, id)
	d.mu.Unlock()
}

func (d *Driver) CreateRenderTarget(id driver.RenderTargetID, desc driver.RenderTargetDescriptor) {
	d.mu.Lock()
	d.targets[id] = desc
	d.mu.Unlock()
}

func (d *Driver) DestroyRenderTarget(id driver.RenderTargetID) {
	d.mu.Lock()
	delete(d.targets, id)
	d.mu.Unlock()
}

func (d *Driver) CreateStream(id driver.StreamID, width, height uint32) {
	d.mu.Lock()
	d.streams[id] = stream{width: width, height: height}
	d.mu.Unlock()
}

func (d *Driver) DestroyStream(id driver.StreamID) {
	d.mu.Lock()
	delete(d.streams, id)
	d.mu.Unlock()
}

func (d *Driver) Allocate(size, align int) []byte {
	return make([]byte, size)
}

// Purge is a no-op: transient allocations are garbage collected and
// HAL retires resources on destroy.
func (d *Driver) Purge() {}

// Terminate destroys every live resource and, when the driver opened
// its own device, the device and instance too.
func (d *Driver) Terminate() {
	d.mu.Lock()
	buffers := d.buffers
	textures := d.textures
	programs := d.programs
	d.buffers = make(map[driver.BufferID]hal.Buffer)
	d.textures = make(map[driver.TextureID]texture)
	d.programs = make(map[driver.ProgramID]hal.ShaderModule)
	d.prims = make(map[driver.PrimitiveID]primitive)
	d.chains = make(map[driver.SwapChainID]swapChain)
	d.targets = make(map[driver.RenderTargetID]driver.RenderTargetDescriptor)
	d.streams = make(map[driver.StreamID]stream)
	d.mu.Unlock()

	for _, buf := range buffers {
		d.device.DestroyBuffer(buf)
	}
	for _, t := range textures {
		d.device.DestroyTexture(t.tex)
	}
	for _, m := range programs {
		d.device.DestroyShaderModule(m)
	}
	if !d.adopted && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.device = nil
	d.queue = nil
}

func mipExtent(base, level uint32) uint32 {
	e := base >> level
	if e == 0 {
		return 1
	}
	return e
}

// texelBytes returns the byte size of one texel. Only uncompressed
// 8-bit-per-channel formats are uploaded through this path.
func texelBytes(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}
