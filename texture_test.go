// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/engine/driver"
)

func TestTextureBuilderValidation(t *testing.T) {
	e, _ := newTestEngine(t, true)

	if _, err := NewTextureBuilder().Width(0).Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero width = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewTextureBuilder().Levels(0).Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero levels = %v, want ErrInvalidArgument", err)
	}
}

func TestTextureUploadImage(t *testing.T) {
	e, p := newTestEngine(t, true)

	tex, err := NewTextureBuilder().Width(4).Height(4).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(64 * x), G: uint8(64 * y), A: 255})
		}
	}
	if err := tex.UploadImage(e, img); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	// Non-RGBA images are converted on the way in.
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	if err := tex.UploadImage(e, gray); err != nil {
		t.Fatalf("UploadImage gray: %v", err)
	}

	wrong := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := tex.UploadImage(e, wrong); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("mismatched upload = %v, want ErrInvalidArgument", err)
	}

	e.FlushAndWait()
	if got := p.Driver().Counts()["texture"]; got != 2 {
		t.Fatalf("live textures = %d, want 2 (default env + test)", got)
	}
	if err := e.Destroy(tex); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestTextureSetImageLevelBounds(t *testing.T) {
	e, _ := newTestEngine(t, true)

	tex, err := NewTextureBuilder().Width(8).Height(8).Levels(3).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tex.SetImage(e, 2, make([]byte, 4*2*2)); err != nil {
		t.Fatalf("SetImage level 2: %v", err)
	}
	if err := tex.SetImage(e, 3, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetImage level 3 = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerateMipmaps(t *testing.T) {
	e, _ := newTestEngine(t, true)

	tex, err := NewTextureBuilder().Width(8).Height(8).Levels(4).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(32 * x), B: uint8(32 * y), A: 255})
		}
	}
	if err := tex.UploadImage(e, img); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if err := tex.GenerateMipmaps(e, img); err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}
	e.FlushAndWait()

	small := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := tex.GenerateMipmaps(e, small); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("mismatched mip source = %v, want ErrInvalidArgument", err)
	}
}

func TestCubemapNeedsSixLayers(t *testing.T) {
	e, _ := newTestEngine(t, true)
	_, err := NewTextureBuilder().
		Width(2).Height(2).Depth(2).
		Sampler(driver.SamplerCubemap).
		Build(e)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("cubemap with 2 layers = %v, want ErrInvalidArgument", err)
	}
}
