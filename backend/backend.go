package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggame/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoProvider is returned by backends that need a host device provider
	// when Config.Provider is nil.
	ErrNoProvider = errors.New("backend: no device provider")
)

// Backend name constants.
const (
	// BackendWGPU is the Pure Go WebGPU backend (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
	// BackendNoop is the wgpu backend on the no-op HAL. It accepts every
	// call and renders nothing; used for headless runs and CI.
	BackendNoop = "noop"
	// BackendSoftware is the CPU rasterizer.
	BackendSoftware = "software"
	// BackendEbiten is the OpenGL-class backend over ebiten images.
	BackendEbiten = "ebiten"
	// BackendRecording captures device calls without rendering.
	BackendRecording = "recording"
)

// Config carries what a backend needs to open its device.
type Config struct {
	// Width and Height are the initial surface size.
	Width  int
	Height int

	// VSync requests presentation synchronized to the display.
	VSync bool

	// Provider supplies a GPU device owned by the host application. Backends
	// that open their own device ignore it.
	Provider gpucontext.DeviceProvider

	// Label names the device in debug output.
	Label string
}

// Factory opens a device for the given configuration.
type Factory func(cfg Config) (gpucore.Device, error)
