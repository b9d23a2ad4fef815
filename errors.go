package ggame

import "errors"

var (
	// ErrTerminated asks the engine to close. Update, Draw, Interact and
	// loading screens may return it; Run then closes and returns nil.
	ErrTerminated = errors.New("ggame: terminated")

	// ErrClosed is returned by Frame and Load once the engine is closing or
	// closed.
	ErrClosed = errors.New("ggame: engine closed")

	// ErrNotLoaded is returned by Frame before Load completed.
	ErrNotLoaded = errors.New("ggame: engine not loaded")

	// ErrAlreadyLoaded is returned by Load when the engine left the loading
	// state.
	ErrAlreadyLoaded = errors.New("ggame: engine already loaded")

	// ErrInvalidConfig is returned for configuration values out of range.
	ErrInvalidConfig = errors.New("ggame: invalid config")
)
