// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the engine driver on the gogpu/wgpu hardware
// abstraction layer. Importing it registers the "wgpu" platform:
//
//	import _ "github.com/gogpu/engine/driver/wgpu"
//
// The driver either adopts a device from a gpucontext provider or
// opens its own Vulkan device.
package wgpu
