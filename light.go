// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "fmt"

// IndirectLight is image-based environment lighting: a reflections
// cubemap plus a spherical-harmonics irradiance estimate.
type IndirectLight struct {
	engine      *Engine
	reflections *Texture
	shBands     int
	sh          []float32
	intensity   float32
}

// IndirectLightBuilder accumulates environment lighting configuration.
type IndirectLightBuilder struct {
	reflections *Texture
	shBands     int
	sh          []float32
	intensity   float32
}

// NewIndirectLightBuilder returns a builder with default intensity
// 30000 lux.
func NewIndirectLightBuilder() *IndirectLightBuilder {
	return &IndirectLightBuilder{intensity: 30000}
}

// Reflections sets the prefiltered reflections cubemap. Referenced,
// not owned.
func (b *IndirectLightBuilder) Reflections(t *Texture) *IndirectLightBuilder {
	b.reflections = t
	return b
}

// Irradiance sets the spherical-harmonics irradiance coefficients:
// bands squared RGB triples, so 1 band needs 3 floats, 2 bands 12 and
// 3 bands 27.
func (b *IndirectLightBuilder) Irradiance(bands int, sh []float32) *IndirectLightBuilder {
	b.shBands = bands
	b.sh = sh
	return b
}

// Intensity sets the environment intensity in lux.
func (b *IndirectLightBuilder) Intensity(lux float32) *IndirectLightBuilder {
	b.intensity = lux
	return b
}

// Build registers the indirect light with the engine.
func (b *IndirectLightBuilder) Build(e *Engine) (*IndirectLight, error) {
	e.checkValid()
	if b.shBands < 0 || b.shBands > 3 {
		return nil, fmt.Errorf("%w: irradiance bands %d out of range", ErrInvalidArgument, b.shBands)
	}
	if want := 3 * b.shBands * b.shBands; len(b.sh) != want {
		return nil, fmt.Errorf("%w: %d bands need %d SH floats, got %d",
			ErrInvalidArgument, b.shBands, want, len(b.sh))
	}
	l := &IndirectLight{
		engine:      e,
		reflections: b.reflections,
		shBands:     b.shBands,
		sh:          append([]float32(nil), b.sh...),
		intensity:   b.intensity,
	}
	e.indirectLights.insert(l)
	return l, nil
}

// Reflections returns the reflections cubemap, or nil.
func (l *IndirectLight) Reflections() *Texture { return l.reflections }

// Intensity reports the environment intensity in lux.
func (l *IndirectLight) Intensity() float32 { return l.intensity }

// Irradiance returns the SH band count and coefficients.
func (l *IndirectLight) Irradiance() (int, []float32) { return l.shBands, l.sh }

func (l *IndirectLight) kindName() string { return "indirect light" }

func (l *IndirectLight) terminate(e *Engine) {
	l.reflections = nil
	l.sh = nil
}
