// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the GPU rendering backend on the gogpu/wgpu HAL.
//
// Texture arrays are 2D array textures sampled with texture_2d_array.
// Every draw call binds its instances as a per-instance vertex buffer and
// issues one Draw(6, n) over a generated unit quad. Render targets carry a
// 2D view for rendering and an array view for sampling.
//
// # Backends
//
// Importing the package registers two backends:
//
//   - "wgpu": opens a Vulkan device, or shares the host device when
//     backend.Config.Provider is set
//   - "noop": the same code path on the no-op HAL, for headless runs
//
// Build with the nogpu tag to leave the Vulkan HAL out of the binary.
//
// # Surface
//
// By default the surface is an offscreen RGBA8 texture that ReadSurface can
// copy back. A windowed host installs its swapchain view with
// SetSurfaceView before each frame.
package wgpu
