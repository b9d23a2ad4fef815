//go:build ebiten

// Package ebiten implements the OpenGL-class backend on top of ebiten.
//
// The device maps texture array layers to separate *ebiten.Image values and
// draws every instance with DrawImage, relying on ebiten's own batching to
// merge the calls of one draw into a single GL submission. Host adapts
// ebiten's game loop to the engine: it collects window events and calls the
// engine frame from ebiten's Draw.
//
// The package is only built with the ebiten tag:
//
//	go build -tags ebiten ./cmd/ggdemo
package ebiten
