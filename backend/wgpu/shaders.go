// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"
)

// instancePrelude is shared by the built-in programs. Custom shaders bind the
// same group 0 layout and declare the same vertex inputs.
const instancePrelude = `
struct Uniforms {
    target_size: vec2<f32>,
    _pad: vec2<f32>,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var layers: texture_2d_array<f32>;
@group(0) @binding(2) var layer_sampler: sampler;

struct InstanceInput {
    @location(0) row0: vec3<f32>,
    @location(1) row1: vec3<f32>,
    @location(2) uv: vec4<f32>,
    @location(3) tint: vec4<f32>,
    @location(4) layer: u32,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) tint: vec4<f32>,
    @location(2) @interpolate(flat) layer: u32,
}

@vertex
fn vs_main(@builtin(vertex_index) vi: u32, in: InstanceInput) -> VertexOutput {
    // Two triangles over the unit square.
    var corners = array<vec2<f32>, 6>(
        vec2<f32>(0.0, 0.0), vec2<f32>(1.0, 0.0), vec2<f32>(0.0, 1.0),
        vec2<f32>(1.0, 0.0), vec2<f32>(1.0, 1.0), vec2<f32>(0.0, 1.0),
    );
    let c = corners[vi];
    let p = vec2<f32>(
        in.row0.x * c.x + in.row0.y * c.y + in.row0.z,
        in.row1.x * c.x + in.row1.y * c.y + in.row1.z,
    );
    let ndc = vec2<f32>(
        p.x / uniforms.target_size.x * 2.0 - 1.0,
        1.0 - p.y / uniforms.target_size.y * 2.0,
    );

    var out: VertexOutput;
    out.position = vec4<f32>(ndc, 0.0, 1.0);
    out.uv = mix(in.uv.xy, in.uv.zw, c);
    out.tint = in.tint;
    out.layer = in.layer;
    return out;
}
`

const spriteShaderSource = instancePrelude + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(layers, layer_sampler, in.uv, in.layer) * in.tint;
}
`

const solidShaderSource = instancePrelude + `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.tint;
}
`

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
