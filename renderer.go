// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// Renderer drives frames: BeginFrame, any number of Render calls, then
// EndFrame. A renderer must only be used from the thread that owns the
// engine.
type Renderer struct {
	engine    *Engine
	swapChain *SwapChain
	frameID   uint64
	inFrame   bool
}

// CreateRenderer returns a new renderer owned by the engine.
func (e *Engine) CreateRenderer() *Renderer {
	e.checkValid()
	r := &Renderer{engine: e}
	e.renderers.insert(r)
	return r
}

// FrameID reports how many frames have been started.
func (r *Renderer) FrameID() uint64 { return r.frameID }

// BeginFrame opens a frame targeting sc. It returns false when the
// frame should be skipped (no swap chain); callers must not call
// Render or EndFrame after a false return.
func (r *Renderer) BeginFrame(sc *SwapChain) bool {
	r.engine.checkValid()
	if sc == nil {
		return false
	}
	r.swapChain = sc
	r.frameID++
	r.inFrame = true
	return true
}

// Render records view into the current frame. Material instances
// referenced by the view's scene are committed before any draw
// reaches the backend, so parameter writes made since the last frame
// become visible.
func (r *Renderer) Render(v *View) {
	e := r.engine
	e.checkValid()
	if v == nil || v.scene == nil {
		return
	}
	for ent := range v.scene.entities {
		rc, ok := e.Renderables().component(ent)
		if !ok || rc.Instance == nil {
			continue
		}
		rc.Instance.Commit(e)
	}
	// A destroyed skybox may still be attached to the scene; it has no
	// instance left to commit.
	if sb := v.scene.skybox; sb != nil && sb.instance != nil {
		sb.instance.Commit(e)
	}
}

// EndFrame closes the frame and flushes the accumulated commands to
// the driver thread.
func (r *Renderer) EndFrame() {
	e := r.engine
	e.checkValid()
	if !r.inFrame {
		return
	}
	r.inFrame = false
	r.swapChain = nil
	e.Flush()
}

func (r *Renderer) kindName() string { return "renderer" }

func (r *Renderer) terminate(e *Engine) {
	r.swapChain = nil
	r.inFrame = false
}
