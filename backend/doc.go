// Package backend provides a pluggable rendering backend registry.
//
// A backend is a gpucore.Device implementation. Backends register a
// Factory from their init functions, in the style of database/sql drivers,
// and the engine opens exactly one of them at startup:
//
//	import _ "github.com/gogpu/ggame/backend/wgpu"
//
//	dev, err := backend.Default(backend.Config{Width: 800, Height: 600})
//
// # Backend Selection
//
// Use Default to get the best available backend, or Open to request a
// specific backend by name:
//
//	dev, err := backend.Open(backend.BackendSoftware, cfg)
//
// # Available Backends
//
//   - "wgpu": GPU-accelerated via gogpu/wgpu (package backend/wgpu)
//   - "noop": wgpu on the no-op HAL, renders nothing (package backend/wgpu)
//   - "software": CPU rasterizer (package backend/software)
//   - "ebiten": OpenGL-class backend, build tag ebiten (package backend/ebiten)
//   - "recording": call recorder without output (always available)
package backend
