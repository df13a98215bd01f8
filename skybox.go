// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "fmt"

// skyboxWGSL is the shared shader for all skyboxes: a fullscreen
// triangle sampling the environment cubemap.
const skyboxWGSL = `
struct VSOut {
	@builtin(position) pos: vec4<f32>,
	@location(0) dir: vec3<f32>,
};

@vertex
fn vs_main(@location(0) position: vec4<f32>) -> VSOut {
	var out: VSOut;
	out.pos = position;
	out.dir = vec3<f32>(position.x, position.y, 1.0);
	return out;
}

@fragment
fn fs_main(in: VSOut) -> @location(0) vec4<f32> {
	return vec4<f32>(in.dir * 0.5 + vec3<f32>(0.5), 1.0);
}
`

// Skybox renders an environment cubemap behind everything else. All
// skyboxes share one material; each holds its own instance carrying
// the per-skybox parameters.
type Skybox struct {
	engine      *Engine
	environment *Texture
	instance    *MaterialInstance
	intensity   float32
}

// SkyboxBuilder accumulates skybox configuration.
type SkyboxBuilder struct {
	environment *Texture
	intensity   float32
}

// NewSkyboxBuilder returns a builder with default intensity 30000 lux.
func NewSkyboxBuilder() *SkyboxBuilder {
	return &SkyboxBuilder{intensity: 30000}
}

// Environment sets the cubemap texture. The skybox references it but
// does not take ownership.
func (b *SkyboxBuilder) Environment(t *Texture) *SkyboxBuilder { b.environment = t; return b }

// Intensity sets the environment intensity in lux.
func (b *SkyboxBuilder) Intensity(lux float32) *SkyboxBuilder { b.intensity = lux; return b }

// Build registers the skybox with the engine, creating the shared
// skybox material on first use.
func (b *SkyboxBuilder) Build(e *Engine) (*Skybox, error) {
	e.checkValid()
	if b.environment == nil {
		return nil, fmt.Errorf("%w: skybox needs an environment texture", ErrInvalidArgument)
	}
	mat, err := e.skyboxMaterial()
	if err != nil {
		return nil, err
	}
	sb := &Skybox{
		engine:      e,
		environment: b.environment,
		instance:    mat.CreateInstance(e, "skybox"),
		intensity:   b.intensity,
	}
	sb.instance.SetParameter("intensity", b.intensity)
	e.skyboxes.insert(sb)
	return sb, nil
}

// Environment returns the cubemap texture.
func (sb *Skybox) Environment() *Texture { return sb.environment }

// Intensity reports the environment intensity in lux.
func (sb *Skybox) Intensity() float32 { return sb.intensity }

// SetIntensity updates the environment intensity in lux.
func (sb *Skybox) SetIntensity(lux float32) {
	sb.intensity = lux
	sb.instance.SetParameter("intensity", lux)
}

func (sb *Skybox) kindName() string { return "skybox" }

func (sb *Skybox) terminate(e *Engine) {
	if sb.instance != nil {
		// Shared-material instances are engine-tracked like any other.
		if mat := sb.instance.material; mat != nil {
			if e.instancesOf(mat).remove(sb.instance) {
				sb.instance.terminate(e)
			}
		}
		sb.instance = nil
	}
	sb.environment = nil
}
