// Package software implements the CPU rendering backend.
//
// Every instance of a draw is rasterized into an image.RGBA by mapping
// pixel centers back through the inverse of its transform and sampling the
// texture layer with nearest filtering. Only the built-in sprite and solid
// shaders are available. The backend is always usable and is the reference
// for pixel tests of the other layers.
//
// Importing the package registers it under backend.BackendSoftware:
//
//	import _ "github.com/gogpu/ggame/backend/software"
package software
