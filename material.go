// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gogpu/engine/driver"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// instanceUniformSize is the fixed size of the per-instance parameter
// block on the backend.
const instanceUniformSize = 256

// Material owns a compiled shader program and the default instance
// created alongside it. Rendering always goes through a
// [MaterialInstance]; the default instance is a convenience for
// materials used without per-object parameters.
type Material struct {
	engine  *Engine
	name    string
	program driver.ProgramID

	defaultInstance *MaterialInstance
}

// MaterialBuilder accumulates material configuration.
type MaterialBuilder struct {
	name   string
	source string
}

// NewMaterialBuilder returns an empty builder.
func NewMaterialBuilder() *MaterialBuilder { return &MaterialBuilder{} }

// Name sets the material name used in logs and the debug server.
func (b *MaterialBuilder) Name(s string) *MaterialBuilder { b.name = s; return b }

// Source sets the WGSL shader source.
func (b *MaterialBuilder) Source(wgsl string) *MaterialBuilder { b.source = wgsl; return b }

// Build compiles the shader, allocates the backend program and
// registers the material and its default instance with the engine.
func (b *MaterialBuilder) Build(e *Engine) (*Material, error) {
	e.checkValid()
	if b.source == "" {
		return nil, fmt.Errorf("%w: empty shader source", ErrInvalidArgument)
	}
	spirv, err := naga.Compile(b.source)
	if err != nil {
		return nil, fmt.Errorf("compile material %q: %w", b.name, err)
	}

	id := driver.ProgramID(e.nextResourceID())
	e.enc.CreateProgram(id, spirv)

	m := &Material{engine: e, name: b.name, program: id}
	e.materials.insert(m)
	m.defaultInstance = m.newInstance(e, b.name+" (default)")
	e.noteMaterial(m)
	return m, nil
}

// Name reports the material name.
func (m *Material) Name() string { return m.name }

// DefaultInstance returns the instance owned by the material itself.
// It is destroyed with the material and must not be destroyed
// directly.
func (m *Material) DefaultInstance() *MaterialInstance { return m.defaultInstance }

// CreateInstance returns a new instance of the material with its own
// parameter block.
func (m *Material) CreateInstance(e *Engine, name string) *MaterialInstance {
	e.checkValid()
	return m.newInstance(e, name)
}

func (m *Material) newInstance(e *Engine, name string) *MaterialInstance {
	id := driver.BufferID(e.nextResourceID())
	e.enc.CreateBuffer(id, instanceUniformSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	mi := &MaterialInstance{
		material: m,
		name:     name,
		uniforms: id,
		params:   make(map[string]float32),
	}
	e.instancesOf(m).insert(mi)
	return mi
}

// instanceCount reports live instances excluding the default one.
func (m *Material) instanceCount(e *Engine) int {
	n := e.instancesOf(m).size()
	if m.defaultInstance != nil {
		n--
	}
	return n
}

func (m *Material) kindName() string { return "material" }

func (m *Material) terminate(e *Engine) {
	// The default instance rides along with the material. On the
	// normal destroy path it is the only entry left; at shutdown any
	// leaked instances are swept here too.
	for _, mi := range e.instancesOf(m).takeAll() {
		mi.terminate(e)
	}
	m.defaultInstance = nil
	delete(e.materialInstances, m)
	e.forgetMaterial(m)
	e.enc.DestroyProgram(m.program)
	m.program = 0
}

// MaterialInstance is one parameter block bound to a material.
// Parameter writes are safe from any goroutine; [MaterialInstance.Commit]
// publishes them to the backend.
type MaterialInstance struct {
	material *Material
	name     string
	uniforms driver.BufferID

	mu     sync.Mutex
	params map[string]float32
	dirty  bool
}

// Material returns the material this instance belongs to.
func (mi *MaterialInstance) Material() *Material { return mi.material }

// Name reports the instance name.
func (mi *MaterialInstance) Name() string { return mi.name }

// SetParameter records a named scalar parameter. The value reaches the
// backend on the next Commit.
func (mi *MaterialInstance) SetParameter(name string, value float32) {
	mi.mu.Lock()
	mi.params[name] = value
	mi.dirty = true
	mi.mu.Unlock()
}

// parameters snapshots the parameter block for the debug server.
func (mi *MaterialInstance) parameters() map[string]float32 {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	out := make(map[string]float32, len(mi.params))
	for k, v := range mi.params {
		out[k] = v
	}
	return out
}

// Parameter returns the recorded value of a parameter, or zero.
func (mi *MaterialInstance) Parameter(name string) float32 {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.params[name]
}

// Commit serializes the parameter block into the instance's uniform
// buffer. Parameters are laid out in name order so the layout is
// stable across commits. No-op when nothing changed since the last
// commit.
func (mi *MaterialInstance) Commit(e *Engine) {
	mi.mu.Lock()
	if !mi.dirty {
		mi.mu.Unlock()
		return
	}
	names := make([]string, 0, len(mi.params))
	for name := range mi.params {
		names = append(names, name)
	}
	sort.Strings(names)
	block := make([]byte, 0, instanceUniformSize)
	for _, name := range names {
		if len(block)+4 > instanceUniformSize {
			break
		}
		block = binary.LittleEndian.AppendUint32(block, math.Float32bits(mi.params[name]))
	}
	mi.dirty = false
	mi.mu.Unlock()

	e.enc.UpdateBuffer(mi.uniforms, 0, block)
}

func (mi *MaterialInstance) kindName() string { return "material instance" }

func (mi *MaterialInstance) terminate(e *Engine) {
	e.enc.DestroyBuffer(mi.uniforms)
	mi.uniforms = 0
}
