// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

// uniformSize is the std140 size of the Uniforms block.
const uniformSize = 16

type pipelineKey struct {
	shader gpucore.ShaderID
	blend  graphics.BlendMode
	format gputypes.TextureFormat
}

// pipelineCache creates render pipelines lazily, one per shader, blend mode
// and color format.
type pipelineCache struct {
	device     hal.Device
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[pipelineKey]hal.RenderPipeline
}

func newPipelineCache(device hal.Device) (*pipelineCache, error) {
	// Binding 0: Uniforms (vertex), 1: texture array, 2: sampler.
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ggame_instance_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ggame_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		device.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	return &pipelineCache{
		device:     device,
		layout:     layout,
		pipeLayout: pipeLayout,
		pipelines:  make(map[pipelineKey]hal.RenderPipeline),
	}, nil
}

// get returns the pipeline for key, creating it from module on first use.
func (c *pipelineCache) get(key pipelineKey, module hal.ShaderModule) (hal.RenderPipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	blend := blendState(key.blend)
	p, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("ggame_pipeline_%d_%s", key.shader, key.blend),
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    instanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline for shader %d: %w", key.shader, err)
	}
	c.pipelines[key] = p
	return p, nil
}

// evict destroys every pipeline built from shader.
func (c *pipelineCache) evict(shader gpucore.ShaderID) {
	for k, p := range c.pipelines {
		if k.shader == shader {
			c.device.DestroyRenderPipeline(p)
			delete(c.pipelines, k)
		}
	}
}

func (c *pipelineCache) destroy() {
	for k, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
	c.device.DestroyPipelineLayout(c.pipeLayout)
	c.device.DestroyBindGroupLayout(c.layout)
}

// instanceLayout matches gpucore.Instance.
func instanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gpucore.InstanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 40, ShaderLocation: 3},
				{Format: gputypes.VertexFormatUint32, Offset: 56, ShaderLocation: 4},
			},
		},
	}
}

// blendState returns the fixed-function blend for a mode on premultiplied
// colors.
func blendState(mode graphics.BlendMode) gputypes.BlendState {
	component := func(src, dst gputypes.BlendFactor) gputypes.BlendComponent {
		return gputypes.BlendComponent{
			SrcFactor: src,
			DstFactor: dst,
			Operation: gputypes.BlendOperationAdd,
		}
	}
	var c gputypes.BlendComponent
	switch mode {
	case graphics.BlendAdd:
		c = component(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
	case graphics.BlendMultiply:
		c = component(gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusSrcAlpha)
	case graphics.BlendReplace:
		c = component(gputypes.BlendFactorOne, gputypes.BlendFactorZero)
	default:
		return gputypes.BlendStatePremultiplied()
	}
	return gputypes.BlendState{Color: c, Alpha: c}
}
