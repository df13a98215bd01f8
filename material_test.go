// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"errors"
	"testing"
)

func TestMaterialCompileFailure(t *testing.T) {
	e, p := newTestEngine(t, true)
	drv := p.Driver()
	progBase := drv.Counts()["program"]
	bufBase := drv.Counts()["buffer"]

	if _, err := NewMaterialBuilder().Name("broken").Source("this is not wgsl {").Build(e); err == nil {
		t.Fatal("Build succeeded with invalid shader source")
	}
	if _, err := NewMaterialBuilder().Name("empty").Build(e); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty source = %v, want ErrInvalidArgument", err)
	}

	// A failed build leaves no backend objects behind.
	e.FlushAndWait()
	if got := drv.Counts()["program"]; got != progBase {
		t.Fatalf("live programs = %d, want %d", got, progBase)
	}
	if got := drv.Counts()["buffer"]; got != bufBase {
		t.Fatalf("live buffers = %d, want %d", got, bufBase)
	}
}

func TestDefaultInstanceNotCountedAsLive(t *testing.T) {
	e, _ := newTestEngine(t, true)

	mat, err := NewMaterialBuilder().Name("solo").Source(defaultWGSL).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Only the default instance exists, so destroy must succeed.
	if err := e.Destroy(mat); err != nil {
		t.Fatalf("Destroy = %v, want nil", err)
	}
}

func TestInstanceOfDestroyedMaterial(t *testing.T) {
	e, _ := newTestEngine(t, true)

	mat, err := NewMaterialBuilder().Name("gone").Source(defaultWGSL).Build(e)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	inst := mat.CreateInstance(e, "orphan")
	if err := e.Destroy(inst); err != nil {
		t.Fatalf("Destroy instance: %v", err)
	}
	if err := e.Destroy(mat); err != nil {
		t.Fatalf("Destroy material: %v", err)
	}
	// The instance's registry is gone with the material.
	if err := e.Destroy(inst); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("Destroy stale instance = %v, want ErrNotOwned", err)
	}
}
