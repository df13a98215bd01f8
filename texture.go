// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"
	"image"

	"github.com/gogpu/engine/driver"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Texture owns one backend texture with a fixed size, format and mip
// chain.
type Texture struct {
	engine *Engine
	handle driver.TextureID

	width  uint32
	height uint32
	depth  uint32
	levels uint32
	format gputypes.TextureFormat
}

// TextureBuilder accumulates texture configuration. Obtain one from
// [NewTextureBuilder]; defaults are a 1x1 RGBA8 texture with a single
// mip level.
type TextureBuilder struct {
	label   string
	width   uint32
	height  uint32
	depth   uint32
	levels  uint32
	format  gputypes.TextureFormat
	usage   gputypes.TextureUsage
	sampler driver.SamplerKind
}

// NewTextureBuilder returns a builder with 1x1 RGBA8 defaults.
func NewTextureBuilder() *TextureBuilder {
	return &TextureBuilder{
		width:   1,
		height:  1,
		depth:   1,
		levels:  1,
		format:  gputypes.TextureFormatRGBA8Unorm,
		usage:   gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		sampler: driver.Sampler2D,
	}
}

// Label sets a debug label forwarded to the backend.
func (b *TextureBuilder) Label(s string) *TextureBuilder { b.label = s; return b }

// Width sets the texture width in texels.
func (b *TextureBuilder) Width(w uint32) *TextureBuilder { b.width = w; return b }

// Height sets the texture height in texels.
func (b *TextureBuilder) Height(h uint32) *TextureBuilder { b.height = h; return b }

// Depth sets the array layer count (or cube face count).
func (b *TextureBuilder) Depth(d uint32) *TextureBuilder { b.depth = d; return b }

// Levels sets the number of mip levels.
func (b *TextureBuilder) Levels(n uint32) *TextureBuilder { b.levels = n; return b }

// Format sets the texel format.
func (b *TextureBuilder) Format(f gputypes.TextureFormat) *TextureBuilder { b.format = f; return b }

// Usage sets the backend usage flags.
func (b *TextureBuilder) Usage(u gputypes.TextureUsage) *TextureBuilder { b.usage = u; return b }

// Sampler sets the sampler dimensionality.
func (b *TextureBuilder) Sampler(s driver.SamplerKind) *TextureBuilder { b.sampler = s; return b }

// Build allocates the backend texture and registers it with the
// engine.
func (b *TextureBuilder) Build(e *Engine) (*Texture, error) {
	e.checkValid()
	if b.width == 0 || b.height == 0 || b.depth == 0 {
		return nil, fmt.Errorf("%w: zero texture extent %dx%dx%d",
			ErrInvalidArgument, b.width, b.height, b.depth)
	}
	if b.levels == 0 {
		return nil, fmt.Errorf("%w: zero mip level count", ErrInvalidArgument)
	}
	if b.sampler == driver.SamplerCubemap && b.depth != 6 {
		return nil, fmt.Errorf("%w: cubemap needs 6 layers, got %d", ErrInvalidArgument, b.depth)
	}

	id := driver.TextureID(e.nextResourceID())
	e.enc.CreateTexture(id, driver.TextureDescriptor{
		Label:         b.label,
		Width:         b.width,
		Height:        b.height,
		Depth:         b.depth,
		MipLevelCount: b.levels,
		SampleCount:   1,
		Format:        b.format,
		Usage:         b.usage,
		Sampler:       b.sampler,
	})

	t := &Texture{
		engine: e,
		handle: id,
		width:  b.width,
		height: b.height,
		depth:  b.depth,
		levels: b.levels,
		format: b.format,
	}
	e.textures.insert(t)
	return t, nil
}

// Width reports the level-0 width in texels.
func (t *Texture) Width() uint32 { return t.width }

// Height reports the level-0 height in texels.
func (t *Texture) Height() uint32 { return t.height }

// Levels reports the mip level count.
func (t *Texture) Levels() uint32 { return t.levels }

// Format reports the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// SetImage uploads raw texel data into mip level.
func (t *Texture) SetImage(e *Engine, level uint32, data []byte) error {
	e.checkValid()
	if level >= t.levels {
		return fmt.Errorf("%w: mip level %d of %d", ErrInvalidArgument, level, t.levels)
	}
	e.enc.UpdateTexture(t.handle, level, data)
	return nil
}

// UploadImage uploads img into mip level 0, converting to RGBA as
// needed. The image must match the texture's level-0 extent.
func (t *Texture) UploadImage(e *Engine, img image.Image) error {
	e.checkValid()
	b := img.Bounds()
	if uint32(b.Dx()) != t.width || uint32(b.Dy()) != t.height {
		return fmt.Errorf("%w: image %dx%d does not match texture %dx%d",
			ErrInvalidArgument, b.Dx(), b.Dy(), t.width, t.height)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		tmp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(tmp, image.Point{}, img, b, draw.Src, nil)
		rgba = tmp
	}
	e.enc.UpdateTexture(t.handle, 0, rgba.Pix)
	return nil
}

// GenerateMipmaps fills levels 1..n-1 from img, which must match mip
// level 0. Each level is downscaled on the CPU with a bilinear kernel
// and uploaded; level 0 itself is not touched.
func (t *Texture) GenerateMipmaps(e *Engine, img image.Image) error {
	e.checkValid()
	b := img.Bounds()
	if uint32(b.Dx()) != t.width || uint32(b.Dy()) != t.height {
		return fmt.Errorf("%w: image %dx%d does not match texture %dx%d",
			ErrInvalidArgument, b.Dx(), b.Dy(), t.width, t.height)
	}
	prev := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(prev, image.Point{}, img, b, draw.Src, nil)

	w, h := t.width, t.height
	for level := uint32(1); level < t.levels; level++ {
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
		next := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		e.enc.UpdateTexture(t.handle, level, next.Pix)
		prev = next
	}
	return nil
}

func (t *Texture) kindName() string { return "texture" }

func (t *Texture) terminate(e *Engine) {
	e.enc.DestroyTexture(t.handle)
	t.handle = 0
}
