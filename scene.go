// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// Scene is a collection of entities plus the environment lighting
// attached to it. Scenes do not own the entities they reference.
type Scene struct {
	engine   *Engine
	entities map[Entity]struct{}
	skybox   *Skybox
	ibl      *IndirectLight
}

// CreateScene returns a new empty scene owned by the engine.
func (e *Engine) CreateScene() *Scene {
	e.checkValid()
	s := &Scene{engine: e, entities: make(map[Entity]struct{})}
	e.scenes.insert(s)
	return s
}

// AddEntity adds an entity to the scene. Adding twice is a no-op.
func (s *Scene) AddEntity(ent Entity) { s.entities[ent] = struct{}{} }

// RemoveEntity removes an entity from the scene if present.
func (s *Scene) RemoveEntity(ent Entity) { delete(s.entities, ent) }

// HasEntity reports whether the scene references ent.
func (s *Scene) HasEntity(ent Entity) bool {
	_, ok := s.entities[ent]
	return ok
}

// EntityCount reports the number of entities in the scene.
func (s *Scene) EntityCount() int { return len(s.entities) }

// SetSkybox attaches a skybox, replacing any previous one. The scene
// does not take ownership.
func (s *Scene) SetSkybox(sb *Skybox) { s.skybox = sb }

// Skybox returns the attached skybox, or nil.
func (s *Scene) Skybox() *Skybox { return s.skybox }

// SetIndirectLight attaches environment lighting, replacing any
// previous one. The scene does not take ownership.
func (s *Scene) SetIndirectLight(l *IndirectLight) { s.ibl = l }

// IndirectLight returns the attached environment lighting, or nil.
func (s *Scene) IndirectLight() *IndirectLight { return s.ibl }

func (s *Scene) kindName() string { return "scene" }

func (s *Scene) terminate(e *Engine) {
	s.entities = nil
	s.skybox = nil
	s.ibl = nil
}
