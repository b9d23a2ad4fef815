// Package recording captures and replays device calls.
//
// A Recorder implements gpucore.Device. It either stands alone, handing out
// its own IDs and accepting every call, or wraps another device and forwards
// to it. Either way each successful call is kept as a Command:
//
//	rec := recording.New(nil)
//	engine, _ := ggame.New(game, rec)
//	...
//	r := rec.Finish()
//
// A finished Recording can be replayed to another device, for example the
// software backend to obtain pixels for a captured frame:
//
//	dev, _ := software.New(software.Config{})
//	err := r.Playback(dev)
//
// Recorders also support failure injection with FailOn, which makes them
// the device of choice in tests of the resource, render and engine layers.
package recording
