// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// Viewport is a rectangle in framebuffer pixels.
type Viewport struct {
	Left   int32
	Bottom int32
	Width  uint32
	Height uint32
}

// View binds a scene and a camera to a viewport for one rendering
// pass. Views hold references only; they own none of what they point
// at.
type View struct {
	engine   *Engine
	name     string
	scene    *Scene
	camera   Entity
	viewport Viewport
	target   *RenderTarget
}

// CreateView returns a new view owned by the engine.
func (e *Engine) CreateView() *View {
	e.checkValid()
	v := &View{engine: e}
	e.views.insert(v)
	return v
}

// SetName sets a debug name for the view.
func (v *View) SetName(name string) { v.name = name }

// Name reports the view's debug name.
func (v *View) Name() string { return v.name }

// SetScene attaches the scene to render.
func (v *View) SetScene(s *Scene) { v.scene = s }

// Scene returns the attached scene, or nil.
func (v *View) Scene() *Scene { return v.scene }

// SetCamera attaches the camera entity. The entity should carry a
// camera component.
func (v *View) SetCamera(ent Entity) { v.camera = ent }

// Camera returns the attached camera entity.
func (v *View) Camera() Entity { return v.camera }

// SetViewport sets the render area.
func (v *View) SetViewport(vp Viewport) { v.viewport = vp }

// Viewport returns the render area.
func (v *View) Viewport() Viewport { return v.viewport }

// SetRenderTarget directs output to an offscreen target instead of
// the swap chain. Nil restores swap chain output.
func (v *View) SetRenderTarget(rt *RenderTarget) { v.target = rt }

// RenderTarget returns the offscreen target, or nil.
func (v *View) RenderTarget() *RenderTarget { return v.target }

func (v *View) kindName() string { return "view" }

func (v *View) terminate(e *Engine) {
	v.scene = nil
	v.target = nil
}
