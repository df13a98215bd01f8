// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"

	"github.com/gogpu/engine/driver"
)

// componentStore maps entities to one component type. Stores are only
// mutated from the engine's owner thread, except during [Engine.GC]
// where each store is swept by exactly one job.
type componentStore[T any] struct {
	data map[Entity]T
}

func (s *componentStore[T]) set(ent Entity, c T) {
	if s.data == nil {
		s.data = make(map[Entity]T)
	}
	s.data[ent] = c
}

func (s *componentStore[T]) get(ent Entity) (T, bool) {
	c, ok := s.data[ent]
	return c, ok
}

func (s *componentStore[T]) remove(ent Entity) (T, bool) {
	c, ok := s.data[ent]
	if ok {
		delete(s.data, ent)
	}
	return c, ok
}

func (s *componentStore[T]) has(ent Entity) bool {
	_, ok := s.data[ent]
	return ok
}

func (s *componentStore[T]) count() int { return len(s.data) }

// sweepDead removes components whose entity is no longer alive and
// returns the removed components.
func (s *componentStore[T]) sweepDead(em *EntityManager) []T {
	var removed []T
	for ent, c := range s.data {
		if !em.Alive(ent) {
			removed = append(removed, c)
			delete(s.data, ent)
		}
	}
	return removed
}

// RenderableDesc configures a renderable component.
type RenderableDesc struct {
	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer
	Instance     *MaterialInstance
}

// RenderableComponent is the per-entity draw state.
type RenderableComponent struct {
	Primitive    driver.PrimitiveID
	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer
	Instance     *MaterialInstance
}

// RenderableManager tracks renderable components and their backend
// primitives.
type RenderableManager struct {
	engine *Engine
	store  componentStore[RenderableComponent]

	// primitives destroyed by the last gc sweep, drained on the owner
	// thread.
	swept []driver.PrimitiveID
}

// Create attaches a renderable component to ent, allocating the
// backend primitive. A transform component is added if missing.
func (m *RenderableManager) Create(ent Entity, desc RenderableDesc) error {
	e := m.engine
	e.checkValid()
	if desc.VertexBuffer == nil || desc.IndexBuffer == nil {
		return fmt.Errorf("%w: renderable needs vertex and index buffers", ErrInvalidArgument)
	}
	if m.store.has(ent) {
		return fmt.Errorf("%w: entity %d already has a renderable", ErrInvalidArgument, ent)
	}
	id := driver.PrimitiveID(e.nextResourceID())
	e.enc.CreateRenderPrimitive(id,
		desc.VertexBuffer.handles[0].id,
		desc.IndexBuffer.handle,
		desc.IndexBuffer.indexCount)
	m.store.set(ent, RenderableComponent{
		Primitive:    id,
		VertexBuffer: desc.VertexBuffer,
		IndexBuffer:  desc.IndexBuffer,
		Instance:     desc.Instance,
	})
	if !e.Transforms().HasComponent(ent) {
		e.Transforms().Create(ent, identityTransform())
	}
	return nil
}

// Destroy removes the component and its backend primitive. No-op when
// ent has no renderable.
func (m *RenderableManager) Destroy(ent Entity) {
	m.engine.checkValid()
	if c, ok := m.store.remove(ent); ok {
		m.engine.enc.DestroyRenderPrimitive(c.Primitive)
	}
}

// HasComponent reports whether ent carries a renderable.
func (m *RenderableManager) HasComponent(ent Entity) bool { return m.store.has(ent) }

// Count reports the number of renderable components.
func (m *RenderableManager) Count() int { return m.store.count() }

func (m *RenderableManager) component(ent Entity) (RenderableComponent, bool) {
	return m.store.get(ent)
}

// gc drops components of dead entities. Backend primitive destruction
// is deferred to flushSwept, which runs on the owner thread: the
// command encoder is not safe for concurrent use from gc jobs.
func (m *RenderableManager) gc(em *EntityManager) {
	for _, c := range m.store.sweepDead(em) {
		m.swept = append(m.swept, c.Primitive)
	}
}

func (m *RenderableManager) flushSwept() {
	for _, id := range m.swept {
		m.engine.enc.DestroyRenderPrimitive(id)
	}
	m.swept = m.swept[:0]
}

func (m *RenderableManager) terminate() {
	for _, c := range m.store.data {
		m.engine.enc.DestroyRenderPrimitive(c.Primitive)
	}
	m.store.data = nil
	m.flushSwept()
}

// LightType selects a punctual light kind.
type LightType uint8

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

// LightComponent is a punctual light source.
type LightComponent struct {
	Type      LightType
	Color     [3]float32
	Intensity float32
}

// LightManager tracks light components.
type LightManager struct {
	engine *Engine
	store  componentStore[LightComponent]
}

// Create attaches a light component to ent.
func (m *LightManager) Create(ent Entity, c LightComponent) {
	m.engine.checkValid()
	m.store.set(ent, c)
}

// Destroy removes the light component if present.
func (m *LightManager) Destroy(ent Entity) {
	m.engine.checkValid()
	m.store.remove(ent)
}

// HasComponent reports whether ent carries a light.
func (m *LightManager) HasComponent(ent Entity) bool { return m.store.has(ent) }

// Component returns the light component of ent.
func (m *LightManager) Component(ent Entity) (LightComponent, bool) { return m.store.get(ent) }

// Count reports the number of light components.
func (m *LightManager) Count() int { return m.store.count() }

func (m *LightManager) gc(em *EntityManager) { m.store.sweepDead(em) }

// TransformComponent is a column-major 4x4 model matrix.
type TransformComponent struct {
	Matrix [16]float32
}

func identityTransform() TransformComponent {
	var t TransformComponent
	t.Matrix[0], t.Matrix[5], t.Matrix[10], t.Matrix[15] = 1, 1, 1, 1
	return t
}

// TransformManager tracks transform components.
type TransformManager struct {
	engine *Engine
	store  componentStore[TransformComponent]
}

// Create attaches a transform component to ent.
func (m *TransformManager) Create(ent Entity, c TransformComponent) {
	m.engine.checkValid()
	m.store.set(ent, c)
}

// SetTransform updates the matrix of ent, creating the component if
// missing.
func (m *TransformManager) SetTransform(ent Entity, matrix [16]float32) {
	m.engine.checkValid()
	m.store.set(ent, TransformComponent{Matrix: matrix})
}

// Destroy removes the transform component if present.
func (m *TransformManager) Destroy(ent Entity) {
	m.engine.checkValid()
	m.store.remove(ent)
}

// HasComponent reports whether ent carries a transform.
func (m *TransformManager) HasComponent(ent Entity) bool { return m.store.has(ent) }

// Component returns the transform component of ent.
func (m *TransformManager) Component(ent Entity) (TransformComponent, bool) { return m.store.get(ent) }

// Count reports the number of transform components.
func (m *TransformManager) Count() int { return m.store.count() }

func (m *TransformManager) gc(em *EntityManager) { m.store.sweepDead(em) }

// CameraComponent holds projection parameters.
type CameraComponent struct {
	Projection [16]float32
	Near       float32
	Far        float32
}

// CameraManager tracks camera components.
type CameraManager struct {
	engine *Engine
	store  componentStore[CameraComponent]
}

// Create attaches a camera component to ent.
func (m *CameraManager) Create(ent Entity, c CameraComponent) {
	m.engine.checkValid()
	m.store.set(ent, c)
}

// Destroy removes the camera component if present.
func (m *CameraManager) Destroy(ent Entity) {
	m.engine.checkValid()
	m.store.remove(ent)
}

// HasComponent reports whether ent carries a camera.
func (m *CameraManager) HasComponent(ent Entity) bool { return m.store.has(ent) }

// Component returns the camera component of ent.
func (m *CameraManager) Component(ent Entity) (CameraComponent, bool) { return m.store.get(ent) }

// Count reports the number of camera components.
func (m *CameraManager) Count() int { return m.store.count() }

func (m *CameraManager) gc(em *EntityManager) { m.store.sweepDead(em) }
