package render

import (
	"github.com/gogpu/ggame/batch"
	"github.com/gogpu/ggame/gpucore"
)

// appendInstances converts commands into per-instance draw data.
func appendInstances(dst []gpucore.Instance, cmds []batch.Command) []gpucore.Instance {
	for i := range cmds {
		c := &cmds[i]
		dst = append(dst, gpucore.Instance{
			Transform: c.Transform.Float32(),
			UV:        c.Source.UV.Float32(),
			Tint:      c.Tint.Premultiply().Float32(),
			Layer:     uint32(c.Source.Layer), //nolint:gosec // validated non-negative by the builder
		})
	}
	return dst
}
