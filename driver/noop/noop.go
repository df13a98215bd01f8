// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import (
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/engine/driver"
)

func init() {
	driver.Register("noop", func() driver.Platform { return &Platform{} })
}

// Platform constructs noop drivers. The zero value is a threaded
// platform; set Inline to force inline (caller-pumped) execution.
type Platform struct {
	// Inline makes the platform report itself as single-threaded, so the
	// engine executes commands on the caller's thread via its pump.
	Inline bool

	// FailDriver makes CreateDriver fail. Used to exercise the engine's
	// construction failure path.
	FailDriver bool

	mu   sync.Mutex
	last *Driver
}

// Name returns the platform identifier.
func (p *Platform) Name() string { return "noop" }

// SingleThreaded reports whether execution is pumped by the caller.
func (p *Platform) SingleThreaded() bool { return p.Inline }

// CreateDriver constructs a counting no-op driver.
func (p *Platform) CreateDriver(gpucontext.DeviceProvider) (driver.Driver, error) {
	if p.FailDriver {
		return nil, driver.ErrInitFailed
	}
	d := NewDriver()
	p.mu.Lock()
	p.last = d
	p.mu.Unlock()
	return d, nil
}

// Driver returns the driver created by the most recent CreateDriver
// call, or nil. Callers use it to inspect the census.
func (p *Platform) Driver() *Driver {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Driver is a no-op driver.Driver that maintains a census of live
// objects per resource kind. All methods are safe for concurrent use so
// tests can inspect counts from the caller thread while the execution
// goroutine mutates them.
type Driver struct {
	mu         sync.Mutex
	live       map[string]int
	terminated bool
}

// NewDriver returns an empty counting driver.
func NewDriver() *Driver {
	return &Driver{live: make(map[string]int)}
}

func (d *Driver) inc(kind string) {
	d.mu.Lock()
	d.live[kind]++
	d.mu.Unlock()
}

func (d *Driver) dec(kind string) {
	d.mu.Lock()
	d.live[kind]--
	d.mu.Unlock()
}

// Counts returns a snapshot of live object counts by kind.
// Kinds with a zero count are omitted.
func (d *Driver) Counts() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]int, len(d.live))
	for k, n := range d.live {
		if n != 0 {
			out[k] = n
		}
	}
	return out
}

// LiveTotal returns the total number of live objects.
func (d *Driver) LiveTotal() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := 0
	for _, n := range d.live {
		total += n
	}
	return total
}

// Terminated reports whether Terminate has been called.
func (d *Driver) Terminated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.terminated
}

// CreateBuffer implements driver.Driver.
func (d *Driver) CreateBuffer(driver.BufferID, uint64, gputypes.BufferUsage) { d.inc("buffer") }

// UpdateBuffer implements driver.Driver.
func (d *Driver) UpdateBuffer(driver.BufferID, uint64, []byte) {}

// DestroyBuffer implements driver.Driver.
func (d *Driver) DestroyBuffer(driver.BufferID) { d.dec("buffer") }

// CreateTexture implements driver.Driver.
func (d *Driver) CreateTexture(driver.TextureID, driver.TextureDescriptor) { d.inc("texture") }

// UpdateTexture implements driver.Driver.
func (d *Driver) UpdateTexture(driver.TextureID, uint32, []byte) {}

// DestroyTexture implements driver.Driver.
func (d *Driver) DestroyTexture(driver.TextureID) { d.dec("texture") }

// CreateProgram implements driver.Driver.
func (d *Driver) CreateProgram(driver.ProgramID, []byte) { d.inc("program") }

// DestroyProgram implements driver.Driver.
func (d *Driver) DestroyProgram(driver.ProgramID) { d.dec("program") }

// CreateRenderPrimitive implements driver.Driver.
func (d *Driver) CreateRenderPrimitive(driver.PrimitiveID, driver.BufferID, driver.BufferID, uint32) {
	d.inc("primitive")
}

// DestroyRenderPrimitive implements driver.Driver.
func (d *Driver) DestroyRenderPrimitive(driver.PrimitiveID) { d.dec("primitive") }

// CreateSwapChain implements driver.Driver.
func (d *Driver) CreateSwapChain(driver.SwapChainID, uintptr, uint64) { d.inc("swapchain") }

// DestroySwapChain implements driver.Driver.
func (d *Driver) DestroySwapChain(driver.SwapChainID) { d.dec("swapchain") }

// CreateRenderTarget implements driver.Driver.
func (d *Driver) CreateRenderTarget(driver.RenderTargetID, driver.RenderTargetDescriptor) {
	d.inc("rendertarget")
}

// DestroyRenderTarget implements driver.Driver.
func (d *Driver) DestroyRenderTarget(driver.RenderTargetID) { d.dec("rendertarget") }

// CreateStream implements driver.Driver.
func (d *Driver) CreateStream(driver.StreamID, uint32, uint32) { d.inc("stream") }

// DestroyStream implements driver.Driver.
func (d *Driver) DestroyStream(driver.StreamID) { d.dec("stream") }

// Allocate implements driver.Driver.
func (d *Driver) Allocate(size, _ int) []byte { return make([]byte, size) }

// Purge implements driver.Driver.
func (d *Driver) Purge() {}

// Terminate implements driver.Driver.
func (d *Driver) Terminate() {
	d.mu.Lock()
	d.terminated = true
	d.mu.Unlock()
}

var _ driver.Driver = (*Driver)(nil)
var _ driver.Platform = (*Platform)(nil)
