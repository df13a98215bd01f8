// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gogpu/engine/command"
	"github.com/gogpu/engine/driver"
	"github.com/gogpu/engine/job"
	"github.com/gogpu/engine/matdbg"
	"github.com/gogpu/gpucontext"
)

// ErrTerminated is returned when destroying an engine that was already
// shut down.
var ErrTerminated = errors.New("engine: already terminated")

// Global engine table. Resource destruction validates ownership
// against it, and Destroy refuses engines it does not know.
var (
	enginesMu sync.Mutex
	engines   = make(map[*Engine]struct{})
)

// defaultWGSL is the shader behind the engine's fallback material.
const defaultWGSL = `
@vertex
fn vs_main(@location(0) position: vec4<f32>) -> @builtin(position) vec4<f32> {
	return position;
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(0.5, 0.5, 0.5, 1.0);
}
`

// Engine owns every rendering resource and the driver thread that
// executes backend commands. Create one with [Create] and tear it down
// with [Destroy]. Unless noted otherwise, methods must be called from
// the single thread that owns the engine.
type Engine struct {
	backend        string
	platform       driver.Platform
	singleThreaded bool

	queue *command.Queue
	enc   *command.Encoder

	// drv and executor are written by the driver goroutine before the
	// startup barrier resolves; Create's receive on ready orders the
	// writes before any use here.
	drv      driver.Driver
	executor *command.Executor
	loopDone chan struct{}

	js *job.System
	em *EntityManager

	lastID atomic.Uint64

	vertexBuffers  resourceList[*VertexBuffer]
	indexBuffers   resourceList[*IndexBuffer]
	textures       resourceList[*Texture]
	materials      resourceList[*Material]
	scenes         resourceList[*Scene]
	views          resourceList[*View]
	renderers      resourceList[*Renderer]
	fences         resourceList[*Fence]
	swapChains     resourceList[*SwapChain]
	renderTargets  resourceList[*RenderTarget]
	streams        resourceList[*Stream]
	skyboxes       resourceList[*Skybox]
	indirectLights resourceList[*IndirectLight]

	materialInstances map[*Material]*resourceList[*MaterialInstance]

	renderables RenderableManager
	lights      LightManager
	transforms  TransformManager
	cameras     CameraManager

	fenceMu      sync.Mutex
	fenceWaiters map[uint64]*Fence

	dbgMu          sync.Mutex
	debugMaterials map[string]*Material
	dbg            *matdbg.Server

	// Built-in resources, destroyed first at shutdown.
	fsTriVB           *VertexBuffer
	fsTriIB           *IndexBuffer
	fsPrimitive       driver.PrimitiveID
	defaultIblTexture *Texture
	defaultIbl        *IndirectLight
	defaultMaterial   *Material
	skyboxMat         *Material

	terminated bool
}

// Create builds an engine on the named backend. An empty backend name
// selects the highest-priority registered platform; a non-nil platform
// overrides the registry lookup. shared, when non-nil, supplies an
// existing device for the driver to adopt.
//
// Unless the platform reports SingleThreaded, the driver runs on its
// own goroutine; Create does not return until that goroutine has the
// driver up or has failed.
func Create(backend string, platform driver.Platform, shared gpucontext.DeviceProvider) (*Engine, error) {
	if platform == nil {
		if backend == "" {
			platform = driver.Default()
		} else {
			platform = driver.Get(backend)
		}
		if platform == nil {
			return nil, fmt.Errorf("%w: no platform for backend %q (available: %s)",
				driver.ErrNotAvailable, backend, strings.Join(driver.Available(), ", "))
		}
	}

	e := &Engine{
		backend:           platform.Name(),
		platform:          platform,
		singleThreaded:    platform.SingleThreaded(),
		queue:             command.NewQueue(MinCommandBufferSize, MaxCommandBufferSize),
		js:                job.NewSystem(0),
		em:                newEntityManager(),
		materialInstances: make(map[*Material]*resourceList[*MaterialInstance]),
		fenceWaiters:      make(map[uint64]*Fence),
		debugMaterials:    make(map[string]*Material),
		loopDone:          make(chan struct{}),
	}
	e.enc = command.NewEncoder(e.queue)
	e.renderables.engine = e
	e.lights.engine = e
	e.transforms.engine = e
	e.cameras.engine = e

	if e.singleThreaded {
		drv, err := platform.CreateDriver(shared)
		if err != nil {
			e.js.Shutdown()
			return nil, fmt.Errorf("create driver on %q: %w", e.backend, err)
		}
		e.drv = drv
		e.executor = command.NewExecutor(drv, e.signalFence)
		close(e.loopDone)
	} else {
		ready := make(chan error, 1)
		go e.loop(platform, shared, ready)
		if err := <-ready; err != nil {
			e.js.Shutdown()
			return nil, fmt.Errorf("create driver on %q: %w", e.backend, err)
		}
	}

	enginesMu.Lock()
	engines[e] = struct{}{}
	enginesMu.Unlock()

	if err := e.initBuiltins(); err != nil {
		var self = e
		_ = Destroy(&self)
		return nil, err
	}
	e.startDebugServer()

	Logger().Info("engine created",
		zap.String("backend", e.backend),
		zap.Bool("singleThreaded", e.singleThreaded))
	return e, nil
}

// loop is the driver thread: it brings the driver up, resolves the
// startup barrier, then executes command buffers until an exit is
// requested and the queue drains.
func (e *Engine) loop(platform driver.Platform, shared gpucontext.DeviceProvider, ready chan<- error) {
	drv, err := platform.CreateDriver(shared)
	if err != nil {
		ready <- err
		return
	}
	e.drv = drv
	e.executor = command.NewExecutor(drv, e.signalFence)
	ready <- nil

	for {
		buffers := e.queue.WaitForCommands()
		if len(buffers) == 0 {
			break
		}
		for _, b := range buffers {
			if err := e.executor.Execute(b); err != nil {
				Logger().Error("command execution failed", zap.Error(err))
			}
			e.queue.ReleaseBuffer(b)
		}
	}
	drv.Terminate()
	close(e.loopDone)
}

// initBuiltins allocates the resources every engine carries: the
// fullscreen triangle, a 1x1 black environment, a neutral indirect
// light and the fallback material.
func (e *Engine) initBuiltins() error {
	vb, err := NewVertexBufferBuilder().
		VertexCount(3).
		BufferCount(1).
		Attribute(AttrPosition, 0, AttributeFloat4, 0, 0).
		Build(e)
	if err != nil {
		return err
	}
	e.fsTriVB = vb
	// One triangle covering the whole clip space.
	if err := vb.SetBufferAt(e, 0, 0, floatBytes(
		-1, -1, 1, 1,
		3, -1, 1, 1,
		-1, 3, 1, 1,
	)); err != nil {
		return err
	}

	ib, err := NewIndexBufferBuilder().IndexCount(3).Type(IndexUShort).Build(e)
	if err != nil {
		return err
	}
	e.fsTriIB = ib
	if err := ib.SetBuffer(e, 0, []byte{0, 0, 1, 0, 2, 0}); err != nil {
		return err
	}

	e.fsPrimitive = driver.PrimitiveID(e.nextResourceID())
	e.enc.CreateRenderPrimitive(e.fsPrimitive, vb.handles[0].id, ib.handle, 3)

	tex, err := NewTextureBuilder().
		Label("default environment").
		Width(1).Height(1).Depth(6).
		Sampler(driver.SamplerCubemap).
		Build(e)
	if err != nil {
		return err
	}
	e.defaultIblTexture = tex

	ibl, err := NewIndirectLightBuilder().
		Reflections(tex).
		Irradiance(3, make([]float32, 27)).
		Intensity(0).
		Build(e)
	if err != nil {
		return err
	}
	e.defaultIbl = ibl

	mat, err := NewMaterialBuilder().Name("default").Source(defaultWGSL).Build(e)
	if err != nil {
		return err
	}
	e.defaultMaterial = mat

	e.Flush()
	if e.singleThreaded {
		e.pump()
	}
	return nil
}

// startDebugServer brings up the material debug server when the
// ENGINE_DEBUG_PORT environment variable names a port. Failures
// disable the server, they never fail engine creation.
func (e *Engine) startDebugServer() {
	v := os.Getenv(DebugPortEnv)
	if v == "" {
		return
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		Logger().Warn("invalid debug port", zap.String("value", v))
		return
	}
	srv, err := matdbg.New(port, e.debugQuery, e.debugEdit)
	if err != nil {
		Logger().Warn("debug server disabled", zap.Error(err))
		return
	}
	e.dbg = srv
	Logger().Info("debug server listening", zap.String("addr", srv.Addr()))
}

// Destroy shuts the engine down and nulls the caller's handle. It
// refuses engines that were never created through [Create] or were
// already destroyed, returning ErrTerminated.
func Destroy(pe **Engine) error {
	if pe == nil || *pe == nil {
		return nil
	}
	e := *pe
	enginesMu.Lock()
	_, ok := engines[e]
	delete(engines, e)
	enginesMu.Unlock()
	if !ok {
		// Already shut down (for example through Shutdown); the handle
		// still gets nulled.
		*pe = nil
		return ErrTerminated
	}
	err := e.shutdown()
	*pe = nil
	return err
}

// Shutdown releases everything the engine owns and stops the driver
// thread. Prefer [Destroy], which also nulls the handle. Safe to call
// twice; the second call is a no-op.
func (e *Engine) Shutdown() error {
	enginesMu.Lock()
	delete(engines, e)
	enginesMu.Unlock()
	return e.shutdown()
}

func (e *Engine) shutdown() error {
	if e.terminated {
		return nil
	}
	e.terminated = true

	Logger().Info("engine shutting down",
		zap.String("backend", e.backend),
		zap.Int("commandHighWatermark", e.queue.HighWatermark()))

	if e.dbg != nil {
		_ = e.dbg.Close()
		e.dbg = nil
	}

	// Built-ins go first so the leak sweeps below only report what the
	// caller actually leaked.
	if e.fsPrimitive != 0 {
		e.enc.DestroyRenderPrimitive(e.fsPrimitive)
		e.fsPrimitive = 0
	}
	if e.fsTriVB != nil && e.vertexBuffers.remove(e.fsTriVB) {
		e.fsTriVB.terminate(e)
	}
	if e.fsTriIB != nil && e.indexBuffers.remove(e.fsTriIB) {
		e.fsTriIB.terminate(e)
	}
	if e.defaultIbl != nil && e.indirectLights.remove(e.defaultIbl) {
		e.defaultIbl.terminate(e)
	}
	if e.defaultIblTexture != nil && e.textures.remove(e.defaultIblTexture) {
		e.defaultIblTexture.terminate(e)
	}

	e.renderables.terminate()

	cleanupList(e, &e.renderers, "renderer")
	cleanupList(e, &e.views, "view")
	cleanupList(e, &e.scenes, "scene")
	cleanupList(e, &e.skyboxes, "skybox")
	if e.skyboxMat != nil && e.materials.remove(e.skyboxMat) {
		e.skyboxMat.terminate(e)
		e.skyboxMat = nil
	}
	cleanupList(e, &e.indexBuffers, "index buffer")
	cleanupList(e, &e.vertexBuffers, "vertex buffer")
	cleanupList(e, &e.textures, "texture")
	cleanupList(e, &e.renderTargets, "render target")
	cleanupList(e, &e.streams, "stream")
	cleanupList(e, &e.indirectLights, "indirect light")
	if e.defaultMaterial != nil && e.materials.remove(e.defaultMaterial) {
		e.defaultMaterial.terminate(e)
		e.defaultMaterial = nil
	}
	cleanupList(e, &e.materials, "material")
	cleanupList(e, &e.swapChains, "swap chain")
	cleanupList(e, &e.fences, "fence")

	e.queue.Flush()
	if e.singleThreaded {
		e.pump()
		e.drv.Terminate()
	} else {
		e.queue.RequestExit()
		<-e.loopDone
	}

	e.js.Shutdown()
	Logger().Info("engine terminated", zap.String("backend", e.backend))
	return nil
}

// checkValid panics when the engine has been destroyed. Resource
// operations call it so use-after-destroy fails loudly instead of
// corrupting driver state.
func (e *Engine) checkValid() {
	enginesMu.Lock()
	_, ok := engines[e]
	enginesMu.Unlock()
	if !ok {
		panic("engine: use after destroy")
	}
}

// DebugServerAddr reports the address of the material debug server,
// or "" when it is not running.
func (e *Engine) DebugServerAddr() string {
	if e.dbg == nil {
		return ""
	}
	return e.dbg.Addr()
}

// Backend reports the name of the driver platform in use.
func (e *Engine) Backend() string { return e.backend }

// SingleThreaded reports whether commands execute inline instead of on
// a driver goroutine.
func (e *Engine) SingleThreaded() bool { return e.singleThreaded }

// Entities returns the entity manager.
func (e *Engine) Entities() *EntityManager { return e.em }

// Renderables returns the renderable component manager.
func (e *Engine) Renderables() *RenderableManager { return &e.renderables }

// Lights returns the light component manager.
func (e *Engine) Lights() *LightManager { return &e.lights }

// Transforms returns the transform component manager.
func (e *Engine) Transforms() *TransformManager { return &e.transforms }

// Cameras returns the camera component manager.
func (e *Engine) Cameras() *CameraManager { return &e.cameras }

// DefaultMaterial returns the engine's fallback material.
func (e *Engine) DefaultMaterial() *Material { return e.defaultMaterial }

// DefaultIndirectLight returns the neutral environment light every
// engine carries.
func (e *Engine) DefaultIndirectLight() *IndirectLight { return e.defaultIbl }

// nextResourceID hands out engine-unique identifiers for driver
// resources and fence tokens. Zero is never issued.
func (e *Engine) nextResourceID() uint64 { return e.lastID.Add(1) }

// instancesOf returns the instance registry of m, creating it on first
// use.
func (e *Engine) instancesOf(m *Material) *resourceList[*MaterialInstance] {
	l := e.materialInstances[m]
	if l == nil {
		l = &resourceList[*MaterialInstance]{}
		e.materialInstances[m] = l
	}
	return l
}

// skyboxMaterial returns the shared skybox material, compiling it on
// first use.
func (e *Engine) skyboxMaterial() (*Material, error) {
	if e.skyboxMat != nil {
		return e.skyboxMat, nil
	}
	m, err := NewMaterialBuilder().Name("skybox").Source(skyboxWGSL).Build(e)
	if err != nil {
		return nil, err
	}
	e.skyboxMat = m
	return m, nil
}

// Destroy releases a resource created by this engine. Destroying a
// resource the engine does not own (already destroyed, or created by
// another engine) is a logged no-op reported as ErrNotOwned.
//
// Destroying a material that still has live instances (other than its
// default instance) fails with ErrLiveInstances and leaves the
// material intact. Default instances cannot be destroyed directly.
func (e *Engine) Destroy(r Resource) error {
	e.checkValid()
	switch v := r.(type) {
	case *VertexBuffer:
		return destroyFrom(e, &e.vertexBuffers, v)
	case *IndexBuffer:
		return destroyFrom(e, &e.indexBuffers, v)
	case *Texture:
		return destroyFrom(e, &e.textures, v)
	case *Material:
		if e.materials.contains(v) && v.instanceCount(e) > 0 {
			return fmt.Errorf("%w: material %q has %d live instances",
				ErrLiveInstances, v.name, v.instanceCount(e))
		}
		err := destroyFrom(e, &e.materials, v)
		if err == nil {
			if v == e.skyboxMat {
				e.skyboxMat = nil
			}
			if v == e.defaultMaterial {
				e.defaultMaterial = nil
			}
		}
		return err
	case *MaterialInstance:
		if v.material != nil && v.material.defaultInstance == v {
			return fmt.Errorf("%w: default instance of material %q",
				ErrInvalidArgument, v.material.name)
		}
		return destroyFrom(e, e.instancesOf(v.material), v)
	case *Scene:
		return destroyFrom(e, &e.scenes, v)
	case *View:
		return destroyFrom(e, &e.views, v)
	case *Renderer:
		return destroyFrom(e, &e.renderers, v)
	case *Fence:
		return destroyFrom(e, &e.fences, v)
	case *SwapChain:
		return destroyFrom(e, &e.swapChains, v)
	case *RenderTarget:
		return destroyFrom(e, &e.renderTargets, v)
	case *Stream:
		return destroyFrom(e, &e.streams, v)
	case *Skybox:
		return destroyFrom(e, &e.skyboxes, v)
	case *IndirectLight:
		return destroyFrom(e, &e.indirectLights, v)
	default:
		return fmt.Errorf("%w: unknown resource kind", ErrNotOwned)
	}
}

// DestroyEntity removes every component attached to ent and retires
// the entity itself.
func (e *Engine) DestroyEntity(ent Entity) {
	e.checkValid()
	e.renderables.Destroy(ent)
	e.lights.Destroy(ent)
	e.transforms.Destroy(ent)
	e.cameras.Destroy(ent)
	e.em.Destroy(ent)
}

// GC sweeps components whose entities have been destroyed. The four
// component managers are swept in parallel on the job system; GC does
// not return until every sweep finished.
func (e *Engine) GC() {
	e.checkValid()
	root := e.js.CreateJob(nil, func() {})
	e.js.Run(e.js.CreateJob(root, func() { e.renderables.gc(e.em) }))
	e.js.Run(e.js.CreateJob(root, func() { e.lights.gc(e.em) }))
	e.js.Run(e.js.CreateJob(root, func() { e.transforms.gc(e.em) }))
	e.js.Run(e.js.CreateJob(root, func() { e.cameras.gc(e.em) }))
	e.js.RunAndWait(root)
	e.renderables.flushSwept()
}

// Flush publishes all pending commands to the driver thread and gives
// the driver a chance to release retired resources.
func (e *Engine) Flush() {
	e.checkValid()
	e.drv.Purge()
	e.queue.Flush()
}

// FlushAndWait flushes pending commands and blocks until the driver
// has executed them all.
func (e *Engine) FlushAndWait() {
	f := e.CreateFence()
	e.Flush()
	if e.singleThreaded {
		e.pump()
	}
	f.Wait()
	_ = e.Destroy(f)
}

// Execute drains the command queue inline. Only legal on
// single-threaded platforms, where no driver goroutine exists; it
// flushes first so commands encoded since the last flush run too.
func (e *Engine) Execute() {
	e.checkValid()
	if !e.singleThreaded {
		panic("engine: Execute called on a multi-threaded engine")
	}
	e.Flush()
	e.pump()
}

// pump executes whatever the queue holds. Caller must be the driver
// owner: the inline path of single-threaded platforms.
func (e *Engine) pump() {
	if e.queue.PendingCount() == 0 {
		return
	}
	for _, b := range e.queue.WaitForCommands() {
		if err := e.executor.Execute(b); err != nil {
			Logger().Error("command execution failed", zap.Error(err))
		}
		e.queue.ReleaseBuffer(b)
	}
}

// StreamAlloc returns transient memory for small stream uploads, or
// nil when size exceeds MaxStreamAllocSize.
func (e *Engine) StreamAlloc(size, align int) []byte {
	e.checkValid()
	if size <= 0 || size > MaxStreamAllocSize {
		return nil
	}
	return e.drv.Allocate(size, align)
}

// registerFence allocates a token and parks f until the driver signals
// it.
func (e *Engine) registerFence(f *Fence) uint64 {
	token := e.nextResourceID()
	e.fenceMu.Lock()
	e.fenceWaiters[token] = f
	e.fenceMu.Unlock()
	return token
}

// signalFence resolves a fence token. Runs on the driver thread.
func (e *Engine) signalFence(token uint64) {
	e.fenceMu.Lock()
	f := e.fenceWaiters[token]
	delete(e.fenceWaiters, token)
	e.fenceMu.Unlock()
	if f != nil {
		close(f.done)
	}
}

// dropFence resolves a fence that is destroyed before the driver
// signaled it, so waiters are not stranded.
func (e *Engine) dropFence(token uint64) {
	e.fenceMu.Lock()
	f := e.fenceWaiters[token]
	delete(e.fenceWaiters, token)
	e.fenceMu.Unlock()
	if f != nil {
		close(f.done)
	}
}

// noteMaterial and forgetMaterial maintain the name index served by
// the debug server.
func (e *Engine) noteMaterial(m *Material) {
	e.dbgMu.Lock()
	e.debugMaterials[m.name] = m
	e.dbgMu.Unlock()
}

func (e *Engine) forgetMaterial(m *Material) {
	e.dbgMu.Lock()
	if e.debugMaterials[m.name] == m {
		delete(e.debugMaterials, m.name)
	}
	e.dbgMu.Unlock()
}

// debugQuery snapshots materials for the debug server. Safe from any
// goroutine.
func (e *Engine) debugQuery() []matdbg.MaterialInfo {
	e.dbgMu.Lock()
	defer e.dbgMu.Unlock()
	out := make([]matdbg.MaterialInfo, 0, len(e.debugMaterials))
	for name, m := range e.debugMaterials {
		info := matdbg.MaterialInfo{Name: name}
		if m.defaultInstance != nil {
			info.Parameters = m.defaultInstance.parameters()
		}
		out = append(out, info)
	}
	return out
}

// debugEdit applies a parameter edit from the debug server to a
// material's default instance. The new value reaches the backend on
// the instance's next commit.
func (e *Engine) debugEdit(material, parameter string, value float32) error {
	e.dbgMu.Lock()
	m := e.debugMaterials[material]
	e.dbgMu.Unlock()
	if m == nil || m.defaultInstance == nil {
		return fmt.Errorf("%w: %s", ErrNotOwned, material)
	}
	m.defaultInstance.SetParameter(parameter, value)
	return nil
}
