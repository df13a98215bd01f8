// Command enginedemo exercises the engine against the noop backend:
// it builds a small scene, renders a few frames and tears everything
// down, printing resource statistics along the way.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/gogpu/engine"
	"github.com/gogpu/engine/driver"
	"github.com/gogpu/engine/driver/noop"
	_ "github.com/gogpu/engine/driver/wgpu"
)

func main() {
	var (
		backend = flag.String("backend", "noop", "driver backend to use")
		frames  = flag.Int("frames", 3, "number of frames to render")
		verbose = flag.Bool("v", false, "enable engine logging")
	)
	flag.Parse()

	if *verbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		engine.SetLogger(zl)
	}

	// The noop backend gets an inline platform so its census is usable
	// for the stats below; any other backend comes from the registry.
	var platform *noop.Platform
	var drvPlatform driver.Platform
	if *backend == "noop" {
		platform = &noop.Platform{Inline: true}
		drvPlatform = platform
	}
	e, err := engine.Create(*backend, drvPlatform, nil)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}

	vb, err := engine.NewVertexBufferBuilder().
		VertexCount(3).
		BufferCount(1).
		Attribute(engine.AttrPosition, 0, engine.AttributeFloat4, 0, 0).
		Build(e)
	if err != nil {
		log.Fatalf("vertex buffer: %v", err)
	}
	ib, err := engine.NewIndexBufferBuilder().IndexCount(3).Build(e)
	if err != nil {
		log.Fatalf("index buffer: %v", err)
	}
	if err := ib.SetBuffer(e, 0, []byte{0, 0, 1, 0, 2, 0}); err != nil {
		log.Fatalf("index data: %v", err)
	}

	mat := e.DefaultMaterial()
	inst := mat.CreateInstance(e, "demo")
	inst.SetParameter("tint", 0.75)

	ent := e.Entities().Create()
	if err := e.Renderables().Create(ent, engine.RenderableDesc{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		Instance:     inst,
	}); err != nil {
		log.Fatalf("renderable: %v", err)
	}

	scene := e.CreateScene()
	scene.AddEntity(ent)
	view := e.CreateView()
	view.SetName("main")
	view.SetScene(scene)
	view.SetViewport(engine.Viewport{Width: 640, Height: 480})
	renderer := e.CreateRenderer()
	sc := e.CreateSwapChain(0, 0)

	for i := 0; i < *frames; i++ {
		if renderer.BeginFrame(sc) {
			renderer.Render(view)
			renderer.EndFrame()
		}
	}
	e.FlushAndWait()

	if platform != nil {
		drv := platform.Driver()
		log.Printf("rendered %d frames on %s, %d live driver objects: %v",
			renderer.FrameID(), e.Backend(), drv.LiveTotal(), drv.Counts())
	} else {
		log.Printf("rendered %d frames on %s", renderer.FrameID(), e.Backend())
	}

	e.DestroyEntity(ent)
	e.GC()
	for _, r := range []engine.Resource{inst, sc, renderer, view, scene, ib, vb} {
		if err := e.Destroy(r); err != nil {
			log.Fatalf("destroy %T: %v", r, err)
		}
	}
	e.FlushAndWait()

	if err := engine.Destroy(&e); err != nil {
		log.Fatalf("destroy engine: %v", err)
	}
	if platform != nil {
		log.Printf("engine destroyed, %d driver objects leaked", platform.Driver().LiveTotal())
	} else {
		log.Print("engine destroyed")
	}
}
