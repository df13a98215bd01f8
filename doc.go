// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package engine manages the lifecycle of rendering resources and the
// command channel between the application and the GPU driver.
//
// An [Engine] owns every resource created through it: buffers,
// textures, materials and their instances, scenes, views, renderers,
// swap chains, render targets, streams, fences, skyboxes and indirect
// lights. Resources are created through builders or Create methods and
// released with [Engine.Destroy]; [Destroy] tears the whole engine
// down, reclaiming anything still alive.
//
// Commands to the driver are encoded into a bounded queue and executed
// on a dedicated goroutine, or inline on platforms that report
// themselves single-threaded. [Engine.Flush] publishes pending
// commands, [Engine.FlushAndWait] additionally blocks until they ran,
// and fences from [Engine.CreateFence] give finer-grained completion
// points.
//
// Drivers register themselves with the driver package; importing a
// driver package for its side effects makes its backend available:
//
//	import _ "github.com/gogpu/engine/driver/noop"
package engine
