package backend

import (
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/recording"
)

// init registers the recording backend on package import.
func init() {
	Register(BackendRecording, func(Config) (gpucore.Device, error) {
		return recording.New(nil), nil
	})
}
