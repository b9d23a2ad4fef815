package ggame

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/load"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := ggame.New(game, cfg,
//	    ggame.WithWindow(host),
//	    ggame.WithLoadingScreen(ggame.NewProgressBar()),
//	)
type Option func(*options)

type options struct {
	window    Window
	source    clock.Source
	device    gpucore.Device
	provider  gpucontext.DeviceProvider
	screen    LoadingScreen
	observers []func(load.Progress)
	label     string
}

func defaultOptions() options {
	return options{label: "ggame"}
}

// WithWindow sets the window polled for events and surface size. The
// default is a HeadlessWindow of the configured size.
func WithWindow(w Window) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithClockSource sets the time source. The default is clock.NewSystem().
// Tests pass a *clock.Manual.
func WithClockSource(s clock.Source) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithDevice makes the engine draw through d instead of opening
// Config.Backend. The caller keeps ownership: Close does not destroy d.
func WithDevice(d gpucore.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithProvider passes a host-owned GPU device to backends that accept one,
// such as wgpu.
func WithProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithLoadingScreen sets the screen drawn on every load progress
// notification. Without one, loading draws nothing.
func WithLoadingScreen(s LoadingScreen) Option {
	return func(o *options) {
		o.screen = s
	}
}

// WithProgress adds an observer called with every load progress
// notification, after the loading screen drew.
func WithProgress(fn func(load.Progress)) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// WithLabel names the device in debug output.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
