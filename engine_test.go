// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/engine/driver"
	"github.com/gogpu/engine/driver/noop"
)

// newTestEngine creates an engine on the noop backend. inline selects
// caller-pumped execution instead of the driver goroutine.
func newTestEngine(t *testing.T, inline bool) (*Engine, *noop.Platform) {
	t.Helper()
	p := &noop.Platform{Inline: inline}
	e, err := Create("noop", p, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		if e != nil {
			_ = Destroy(&e)
		}
	})
	return e, p
}

func TestCreateFailsWithoutDriver(t *testing.T) {
	p := &noop.Platform{FailDriver: true}
	if _, err := Create("noop", p, nil); err == nil {
		t.Fatal("Create succeeded with a failing platform")
	}

	pt := &noop.Platform{FailDriver: true}
	if _, err := Create("noop", pt, nil); err == nil {
		t.Fatal("Create succeeded with a failing threaded platform")
	}
}

func TestCreateUnknownBackend(t *testing.T) {
	if _, err := Create("definitely-not-registered", nil, nil); err == nil {
		t.Fatal("Create succeeded for an unregistered backend")
	}
}

func TestBufferLifecycle(t *testing.T) {
	e, p := newTestEngine(t, true)
	drv := p.Driver()
	baseline := drv.Counts()["buffer"]

	vb, err := NewVertexBufferBuilder().
		VertexCount(3).
		BufferCount(1).
		Attribute(AttrPosition, 0, AttributeFloat4, 0, 0).
		Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := vb.SetBufferAt(e, 0, 0, floatBytes(
		-1, -1, 1, 1,
		3, -1, 1, 1,
		-1, 3, 1, 1,
	)); err != nil {
		t.Fatalf("SetBufferAt: %v", err)
	}
	e.FlushAndWait()
	if got := drv.Counts()["buffer"]; got != baseline+1 {
		t.Fatalf("live buffers = %d, want %d", got, baseline+1)
	}

	if err := e.Destroy(vb); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	e.FlushAndWait()
	if got := drv.Counts()["buffer"]; got != baseline {
		t.Fatalf("live buffers after destroy = %d, want %d", got, baseline)
	}

	// Destroying again is a reported no-op, not a crash.
	if err := e.Destroy(vb); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("second Destroy = %v, want ErrNotOwned", err)
	}
}

func TestSetBufferAtBounds(t *testing.T) {
	e, _ := newTestEngine(t, true)
	vb, err := NewVertexBufferBuilder().
		VertexCount(2).
		BufferCount(1).
		Attribute(AttrPosition, 0, AttributeFloat2, 0, 0).
		Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := vb.SetBufferAt(e, 1, 0, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("out-of-range slot = %v, want ErrInvalidArgument", err)
	}
	if err := vb.SetBufferAt(e, 0, 0, make([]byte, 17)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("oversized write = %v, want ErrInvalidArgument", err)
	}
}

func TestMaterialDestroyWithLiveInstances(t *testing.T) {
	e, p := newTestEngine(t, true)
	drv := p.Driver()

	mat, err := NewMaterialBuilder().Name("lit").Source(defaultWGSL).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	inst := mat.CreateInstance(e, "lit 1")

	if err := e.Destroy(mat); !errors.Is(err, ErrLiveInstances) {
		t.Fatalf("Destroy with live instance = %v, want ErrLiveInstances", err)
	}
	// The failed destroy must leave the material fully usable.
	inst2 := mat.CreateInstance(e, "lit 2")
	if err := e.Destroy(inst2); err != nil {
		t.Fatalf("Destroy instance: %v", err)
	}
	if err := e.Destroy(inst); err != nil {
		t.Fatalf("Destroy instance: %v", err)
	}
	if err := e.Destroy(mat); err != nil {
		t.Fatalf("Destroy material: %v", err)
	}
	e.FlushAndWait()
	if got := drv.Counts()["program"]; got != 1 {
		t.Fatalf("live programs = %d, want 1 (default material)", got)
	}
}

func TestDefaultInstanceNotDestroyable(t *testing.T) {
	e, _ := newTestEngine(t, true)
	mat := e.DefaultMaterial()
	if err := e.Destroy(mat.DefaultInstance()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Destroy default instance = %v, want ErrInvalidArgument", err)
	}
}

func TestMaterialInstanceCommit(t *testing.T) {
	e, _ := newTestEngine(t, true)
	inst := e.DefaultMaterial().CreateInstance(e, "params")
	inst.SetParameter("roughness", 0.25)
	inst.SetParameter("metallic", 1)
	if got := inst.Parameter("roughness"); got != 0.25 {
		t.Fatalf("Parameter = %v, want 0.25", got)
	}
	inst.Commit(e)
	e.FlushAndWait()
	if err := e.Destroy(inst); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestThreadedShutdownJoinsDriver(t *testing.T) {
	p := &noop.Platform{}
	e, err := Create("noop", p, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tex, err := NewTextureBuilder().Width(4).Height(4).Build(e)
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	_ = tex // leaked deliberately; shutdown must sweep it

	if err := Destroy(&e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if e != nil {
		t.Fatal("Destroy did not null the handle")
	}

	drv := p.Driver()
	if !drv.Terminated() {
		t.Fatal("driver not terminated after Destroy")
	}
	if got := drv.LiveTotal(); got != 0 {
		t.Fatalf("live objects after shutdown = %d (%v), want 0", got, drv.Counts())
	}
}

func TestDestroyTwice(t *testing.T) {
	e, _ := newTestEngine(t, true)
	keep := e
	if err := Destroy(&e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := Destroy(&keep); !errors.Is(err, ErrTerminated) {
		t.Fatalf("second Destroy = %v, want ErrTerminated", err)
	}
}

func TestDestroyAfterShutdownNilsHandle(t *testing.T) {
	e, _ := newTestEngine(t, true)
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := Destroy(&e); !errors.Is(err, ErrTerminated) {
		t.Fatalf("Destroy after Shutdown = %v, want ErrTerminated", err)
	}
	if e != nil {
		t.Fatal("handle not nulled by Destroy after Shutdown")
	}
}

func TestUseAfterDestroyPanics(t *testing.T) {
	e, _ := newTestEngine(t, true)
	keep := e
	if err := Destroy(&e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("CreateScene on a destroyed engine did not panic")
		}
	}()
	keep.CreateScene()
}

func TestFence(t *testing.T) {
	e, _ := newTestEngine(t, false)

	f := e.CreateFence()
	// Not flushed: the fence must not resolve on its own.
	if err := f.WaitTimeout(20 * time.Millisecond); !errors.Is(err, ErrFenceTimeout) {
		t.Fatalf("WaitTimeout before flush = %v, want ErrFenceTimeout", err)
	}
	e.Flush()
	if err := f.WaitTimeout(5 * time.Second); err != nil {
		t.Fatalf("WaitTimeout after flush = %v", err)
	}
	if !f.Signaled() {
		t.Fatal("fence not signaled after wait")
	}
	if err := e.Destroy(f); err != nil {
		t.Fatalf("Destroy fence: %v", err)
	}
}

func TestFlushAndWaitThreaded(t *testing.T) {
	e, p := newTestEngine(t, false)
	ib, err := NewIndexBufferBuilder().IndexCount(6).Type(IndexUInt).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e.FlushAndWait()
	// The wait guarantees the create reached the driver.
	if got := p.Driver().Counts()["buffer"]; got < 4 {
		t.Fatalf("live buffers = %d, want at least 4", got)
	}
	if err := e.Destroy(ib); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestExecutePanicsOnThreadedEngine(t *testing.T) {
	e, _ := newTestEngine(t, false)
	defer func() {
		if recover() == nil {
			t.Fatal("Execute on a threaded engine did not panic")
		}
	}()
	e.Execute()
}

func TestExecuteInline(t *testing.T) {
	e, p := newTestEngine(t, true)
	base := p.Driver().Counts()["buffer"]
	_, err := NewIndexBufferBuilder().IndexCount(3).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e.Execute()
	if got := p.Driver().Counts()["buffer"]; got != base+1 {
		t.Fatalf("live buffers after Execute = %d, want %d", got, base+1)
	}
}

func TestStreamAlloc(t *testing.T) {
	e, _ := newTestEngine(t, true)
	if buf := e.StreamAlloc(64, 8); len(buf) != 64 {
		t.Fatalf("StreamAlloc(64) returned %d bytes", len(buf))
	}
	if buf := e.StreamAlloc(MaxStreamAllocSize+1, 8); buf != nil {
		t.Fatal("StreamAlloc above the cap did not return nil")
	}
	if buf := e.StreamAlloc(0, 8); buf != nil {
		t.Fatal("StreamAlloc(0) did not return nil")
	}
}

func TestEntityComponentGC(t *testing.T) {
	e, p := newTestEngine(t, true)
	drv := p.Driver()
	primBase := drv.Counts()["primitive"]

	vb, err := NewVertexBufferBuilder().
		VertexCount(3).
		BufferCount(1).
		Attribute(AttrPosition, 0, AttributeFloat4, 0, 0).
		Build(e)
	if err != nil {
		t.Fatalf("vertex buffer: %v", err)
	}
	ib, err := NewIndexBufferBuilder().IndexCount(3).Build(e)
	if err != nil {
		t.Fatalf("index buffer: %v", err)
	}

	ent := e.Entities().Create()
	err = e.Renderables().Create(ent, RenderableDesc{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		Instance:     e.DefaultMaterial().DefaultInstance(),
	})
	if err != nil {
		t.Fatalf("renderable: %v", err)
	}
	e.Lights().Create(ent, LightComponent{Type: LightPoint, Intensity: 100})
	e.Cameras().Create(ent, CameraComponent{Near: 0.1, Far: 100})

	// Create ensures a transform rides along.
	if !e.Transforms().HasComponent(ent) {
		t.Fatal("renderable creation did not add a transform")
	}
	e.FlushAndWait()
	if got := drv.Counts()["primitive"]; got != primBase+1 {
		t.Fatalf("live primitives = %d, want %d", got, primBase+1)
	}

	// Retire the entity without touching the managers, then let GC
	// find the orphans.
	e.Entities().Destroy(ent)
	e.GC()
	e.FlushAndWait()

	if e.Renderables().HasComponent(ent) {
		t.Fatal("renderable survived GC")
	}
	if e.Lights().HasComponent(ent) {
		t.Fatal("light survived GC")
	}
	if e.Transforms().HasComponent(ent) {
		t.Fatal("transform survived GC")
	}
	if e.Cameras().HasComponent(ent) {
		t.Fatal("camera survived GC")
	}
	if got := drv.Counts()["primitive"]; got != primBase {
		t.Fatalf("live primitives after GC = %d, want %d", got, primBase)
	}
}

func TestDestroyEntityRemovesComponents(t *testing.T) {
	e, _ := newTestEngine(t, true)
	ent := e.Entities().Create()
	e.Lights().Create(ent, LightComponent{Type: LightDirectional, Intensity: 1})
	e.Transforms().Create(ent, identityTransform())

	e.DestroyEntity(ent)
	if e.Entities().Alive(ent) {
		t.Fatal("entity alive after DestroyEntity")
	}
	if e.Lights().HasComponent(ent) || e.Transforms().HasComponent(ent) {
		t.Fatal("components survived DestroyEntity")
	}
}

func TestSceneViewRenderer(t *testing.T) {
	e, p := newTestEngine(t, true)

	vb, err := NewVertexBufferBuilder().
		VertexCount(3).
		BufferCount(1).
		Attribute(AttrPosition, 0, AttributeFloat4, 0, 0).
		Build(e)
	if err != nil {
		t.Fatalf("vertex buffer: %v", err)
	}
	ib, err := NewIndexBufferBuilder().IndexCount(3).Build(e)
	if err != nil {
		t.Fatalf("index buffer: %v", err)
	}
	inst := e.DefaultMaterial().CreateInstance(e, "tri")
	inst.SetParameter("tint", 0.5)

	ent := e.Entities().Create()
	if err := e.Renderables().Create(ent, RenderableDesc{
		VertexBuffer: vb, IndexBuffer: ib, Instance: inst,
	}); err != nil {
		t.Fatalf("renderable: %v", err)
	}

	scene := e.CreateScene()
	scene.AddEntity(ent)
	if !scene.HasEntity(ent) || scene.EntityCount() != 1 {
		t.Fatal("scene does not track the entity")
	}

	view := e.CreateView()
	view.SetName("main")
	view.SetScene(scene)
	view.SetViewport(Viewport{Width: 640, Height: 480})

	r := e.CreateRenderer()
	if r.BeginFrame(nil) {
		t.Fatal("BeginFrame succeeded without a swap chain")
	}
	sc := e.CreateSwapChain(0, SwapChainReadable)
	if !r.BeginFrame(sc) {
		t.Fatal("BeginFrame failed")
	}
	r.Render(view)
	r.EndFrame()
	if r.FrameID() != 1 {
		t.Fatalf("FrameID = %d, want 1", r.FrameID())
	}
	e.FlushAndWait()
	if got := p.Driver().Counts()["swapchain"]; got != 1 {
		t.Fatalf("live swap chains = %d, want 1", got)
	}
}

func TestSkyboxSharesMaterial(t *testing.T) {
	e, p := newTestEngine(t, true)
	drv := p.Driver()
	progBase := drv.Counts()["program"]

	env, err := NewTextureBuilder().Width(2).Height(2).Depth(6).Sampler(driver.SamplerCubemap).Build(e)
	if err != nil {
		t.Fatalf("environment: %v", err)
	}
	sb1, err := NewSkyboxBuilder().Environment(env).Build(e)
	if err != nil {
		t.Fatalf("skybox 1: %v", err)
	}
	sb2, err := NewSkyboxBuilder().Environment(env).Intensity(10000).Build(e)
	if err != nil {
		t.Fatalf("skybox 2: %v", err)
	}
	e.FlushAndWait()

	// Both skyboxes compile exactly one shared program.
	if got := drv.Counts()["program"]; got != progBase+1 {
		t.Fatalf("live programs = %d, want %d", got, progBase+1)
	}
	if sb1.Intensity() == sb2.Intensity() {
		t.Fatal("intensities should differ")
	}

	scene := e.CreateScene()
	scene.SetSkybox(sb1)
	if scene.Skybox() != sb1 {
		t.Fatal("scene skybox not set")
	}

	if err := e.Destroy(sb1); err != nil {
		t.Fatalf("Destroy skybox: %v", err)
	}
	if err := e.Destroy(sb2); err != nil {
		t.Fatalf("Destroy skybox: %v", err)
	}
}

func TestRenderSceneWithDestroyedSkybox(t *testing.T) {
	e, _ := newTestEngine(t, true)

	env, err := NewTextureBuilder().Width(2).Height(2).Depth(6).Sampler(driver.SamplerCubemap).Build(e)
	if err != nil {
		t.Fatalf("environment: %v", err)
	}
	sb, err := NewSkyboxBuilder().Environment(env).Build(e)
	if err != nil {
		t.Fatalf("skybox: %v", err)
	}

	scene := e.CreateScene()
	scene.SetSkybox(sb)
	view := e.CreateView()
	view.SetScene(scene)

	// The scene still references the skybox after its destruction;
	// rendering must skip it rather than crash.
	if err := e.Destroy(sb); err != nil {
		t.Fatalf("Destroy skybox: %v", err)
	}
	r := e.CreateRenderer()
	sc := e.CreateSwapChain(0, 0)
	if !r.BeginFrame(sc) {
		t.Fatal("BeginFrame refused the swap chain")
	}
	r.Render(view)
	r.EndFrame()
}

func TestIndirectLightValidation(t *testing.T) {
	e, _ := newTestEngine(t, true)

	if _, err := NewIndirectLightBuilder().Irradiance(2, make([]float32, 5)).Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad SH count = %v, want ErrInvalidArgument", err)
	}
	l, err := NewIndirectLightBuilder().
		Irradiance(1, make([]float32, 3)).
		Intensity(20000).
		Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bands, sh := l.Irradiance()
	if bands != 1 || len(sh) != 3 {
		t.Fatalf("Irradiance = %d bands, %d floats", bands, len(sh))
	}
	if err := e.Destroy(l); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestRenderTargetValidation(t *testing.T) {
	e, p := newTestEngine(t, true)

	color, err := NewTextureBuilder().Width(8).Height(8).Build(e)
	if err != nil {
		t.Fatalf("color: %v", err)
	}
	depth, err := NewTextureBuilder().Width(4).Height(4).Build(e)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}

	if _, err := NewRenderTargetBuilder().Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("no attachments = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewRenderTargetBuilder().Color(color).Depth(depth).Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("mismatched extents = %v, want ErrInvalidArgument", err)
	}

	rt, err := NewRenderTargetBuilder().Color(color).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e.FlushAndWait()
	if got := p.Driver().Counts()["rendertarget"]; got != 1 {
		t.Fatalf("live render targets = %d, want 1", got)
	}
	if err := e.Destroy(rt); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestStreamLifecycle(t *testing.T) {
	e, p := newTestEngine(t, true)

	if _, err := NewStreamBuilder().Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero extent = %v, want ErrInvalidArgument", err)
	}
	s, err := NewStreamBuilder().Width(640).Height(480).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e.FlushAndWait()
	if got := p.Driver().Counts()["stream"]; got != 1 {
		t.Fatalf("live streams = %d, want 1", got)
	}
	if err := e.Destroy(s); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	e.FlushAndWait()
	if got := p.Driver().Counts()["stream"]; got != 0 {
		t.Fatalf("live streams after destroy = %d, want 0", got)
	}
}
