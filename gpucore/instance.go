package gpucore

import (
	"encoding/binary"
	"math"
)

// Instance is the per-quad data of an instanced draw.
//
// Transform maps the unit square (0,0)-(1,1) into target pixels, row-major
// A B C D E F. UV is u0 v0 u1 v1 within Layer. Tint is premultiplied.
//
// The GPU layout is little-endian float32 throughout, InstanceStride bytes
// per instance:
//
//	offset  0  vec3 transform row 0 (A, B, C)
//	offset 12  vec3 transform row 1 (D, E, F)
//	offset 24  vec4 uv
//	offset 40  vec4 tint
//	offset 56  u32  layer
//	offset 60  u32  padding
type Instance struct {
	Transform [6]float32
	UV        [4]float32
	Tint      [4]float32
	Layer     uint32
}

// InstanceStride is the encoded size of one Instance.
const InstanceStride = 64

// AppendInstances appends the GPU encoding of instances to dst.
func AppendInstances(dst []byte, instances []Instance) []byte {
	for i := range instances {
		in := &instances[i]
		for _, f := range in.Transform {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
		for _, f := range in.UV {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
		for _, f := range in.Tint {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
		dst = binary.LittleEndian.AppendUint32(dst, in.Layer)
		dst = binary.LittleEndian.AppendUint32(dst, 0)
	}
	return dst
}
