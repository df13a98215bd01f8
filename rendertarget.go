// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"

	"github.com/gogpu/engine/driver"
)

// RenderTarget is an offscreen framebuffer assembled from engine
// textures. The target references its attachments but does not own
// them; destroy the textures separately, after the target.
type RenderTarget struct {
	engine *Engine
	handle driver.RenderTargetID

	color *Texture
	depth *Texture
}

// RenderTargetBuilder accumulates render target attachments.
type RenderTargetBuilder struct {
	label string
	color *Texture
	depth *Texture
}

// NewRenderTargetBuilder returns an empty builder.
func NewRenderTargetBuilder() *RenderTargetBuilder { return &RenderTargetBuilder{} }

// Label sets a debug label forwarded to the backend.
func (b *RenderTargetBuilder) Label(s string) *RenderTargetBuilder { b.label = s; return b }

// Color sets the color attachment.
func (b *RenderTargetBuilder) Color(t *Texture) *RenderTargetBuilder { b.color = t; return b }

// Depth sets the depth attachment.
func (b *RenderTargetBuilder) Depth(t *Texture) *RenderTargetBuilder { b.depth = t; return b }

// Build allocates the backend render target and registers it with the
// engine. At least a color attachment is required; when both
// attachments are present their extents must match.
func (b *RenderTargetBuilder) Build(e *Engine) (*RenderTarget, error) {
	e.checkValid()
	if b.color == nil {
		return nil, fmt.Errorf("%w: render target needs a color attachment", ErrInvalidArgument)
	}
	if b.depth != nil && (b.depth.width != b.color.width || b.depth.height != b.color.height) {
		return nil, fmt.Errorf("%w: depth %dx%d does not match color %dx%d",
			ErrInvalidArgument, b.depth.width, b.depth.height, b.color.width, b.color.height)
	}

	desc := driver.RenderTargetDescriptor{
		Label:  b.label,
		Width:  b.color.width,
		Height: b.color.height,
		Color:  b.color.handle,
	}
	if b.depth != nil {
		desc.Depth = b.depth.handle
	}
	id := driver.RenderTargetID(e.nextResourceID())
	e.enc.CreateRenderTarget(id, desc)

	rt := &RenderTarget{engine: e, handle: id, color: b.color, depth: b.depth}
	e.renderTargets.insert(rt)
	return rt, nil
}

// Color returns the color attachment.
func (rt *RenderTarget) Color() *Texture { return rt.color }

// Depth returns the depth attachment, or nil.
func (rt *RenderTarget) Depth() *Texture { return rt.depth }

func (rt *RenderTarget) kindName() string { return "render target" }

func (rt *RenderTarget) terminate(e *Engine) {
	e.enc.DestroyRenderTarget(rt.handle)
	rt.handle = 0
	rt.color = nil
	rt.depth = nil
}
