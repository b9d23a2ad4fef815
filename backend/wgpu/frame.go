// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

// fenceTimeout bounds the wait for a submitted frame.
const fenceTimeout = 5 * time.Second

// frame holds the encoder and per-draw objects of the frame in progress.
type frame struct {
	encoder hal.CommandEncoder
	buffers []hal.Buffer
	groups  []hal.BindGroup
}

// SetSurfaceView makes a host-owned texture view the presentable surface,
// for example the current swapchain image. Present then submits without
// readback and the host presents. A nil view returns to the offscreen
// surface.
func (d *Device) SetSurfaceView(view hal.TextureView, format gputypes.TextureFormat, width, height int) {
	d.destroySurface()
	if view == nil {
		d.surface = surface{format: colorFormat}
		return
	}
	d.surface = surface{view: view, format: format, width: width, height: height, host: true}
}

// ensureSurface (re)creates the offscreen surface at the given size.
func (d *Device) ensureSurface(width, height int) error {
	if d.surface.host {
		d.surface.width, d.surface.height = width, height
		return nil
	}
	if d.surface.tex != nil && d.surface.width == width && d.surface.height == height {
		return nil
	}
	d.destroySurface()

	w, h := uint32(width), uint32(height) //nolint:gosec // validated positive
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ggame_surface",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create surface texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "ggame_surface_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create surface view: %w", err)
	}
	d.surface = surface{tex: tex, view: view, format: colorFormat, width: width, height: height}
	return nil
}

func (d *Device) destroySurface() {
	if d.surface.host {
		return
	}
	if d.surface.view != nil {
		d.device.DestroyTextureView(d.surface.view)
	}
	if d.surface.tex != nil {
		d.device.DestroyTexture(d.surface.tex)
	}
	d.surface = surface{format: colorFormat}
}

// BeginFrame implements gpucore.Device.
func (d *Device) BeginFrame(width, height int) error {
	if d.frame != nil {
		return ErrFrameInProgress
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	if err := d.ensureSurface(width, height); err != nil {
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "ggame_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ggame_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	d.frame = &frame{encoder: encoder}
	return nil
}

// attachment resolves the color view and format of a target and moves its
// texture back to attachment usage if it was sampled earlier in the frame.
func (d *Device) attachment(id gpucore.TargetID) (hal.TextureView, gputypes.TextureFormat, *renderTarget, error) {
	if id == gpucore.Surface {
		return d.surface.view, d.surface.format, nil, nil
	}
	rt, ok := d.targets[id]
	if !ok {
		return nil, 0, nil, fmt.Errorf("%w: target %d", ErrUnknownID, id)
	}
	if rt.sampled {
		d.frame.encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: rt.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageTextureBinding,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
		rt.sampled = false
	}
	return rt.view, colorFormat, rt, nil
}

// Clear implements gpucore.Device.
func (d *Device) Clear(target gpucore.TargetID, color graphics.RGBA) error {
	if d.frame == nil {
		return ErrNoFrame
	}
	view, _, rt, err := d.attachment(target)
	if err != nil {
		return err
	}
	c := color.Premultiply()
	desc := &hal.RenderPassDescriptor{
		Label: "ggame_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A},
		}},
	}
	if rt != nil && rt.depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            rt.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	rp := d.frame.encoder.BeginRenderPass(desc)
	rp.End()
	return nil
}

// Draw implements gpucore.Device.
func (d *Device) Draw(call *gpucore.DrawCall) error {
	if d.frame == nil {
		return ErrNoFrame
	}
	shader, ok := d.shaders[call.Shader]
	if !ok {
		return fmt.Errorf("%w: shader %d", ErrUnknownID, call.Shader)
	}
	arr, ok := d.textures[call.Texture]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownID, call.Texture)
	}
	if len(call.Instances) == 0 {
		return nil
	}
	view, format, _, err := d.attachment(call.Target)
	if err != nil {
		return err
	}
	if arr.target != 0 {
		d.sampleTarget(arr.target)
	}

	pipeline, err := d.pipelines.get(pipelineKey{shader: call.Shader, blend: call.Blend, format: format}, shader.module)
	if err != nil {
		return err
	}

	width, height := call.TargetWidth, call.TargetHeight
	if call.Target == gpucore.Surface && (width == 0 || height == 0) {
		width, height = d.surface.width, d.surface.height
	}
	uniforms := make([]byte, 0, uniformSize)
	for _, f := range [4]float32{float32(width), float32(height), 0, 0} {
		uniforms = binary.LittleEndian.AppendUint32(uniforms, math.Float32bits(f))
	}
	ub, err := d.buffer("ggame_uniforms", gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, uniforms)
	if err != nil {
		return err
	}
	data := gpucore.AppendInstances(make([]byte, 0, len(call.Instances)*gpucore.InstanceStride), call.Instances)
	vb, err := d.buffer("ggame_instances", gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, data)
	if err != nil {
		return err
	}

	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ggame_draw_bind_group",
		Layout: d.pipelines.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: arr.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	d.frame.groups = append(d.frame.groups, bg)

	rp := d.frame.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "ggame_draw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bg, nil)
	rp.SetVertexBuffer(0, vb, 0)
	rp.Draw(6, uint32(len(call.Instances)), 0, 0) //nolint:gosec // instance count fits uint32
	rp.End()
	return nil
}

// sampleTarget moves a render target's color buffer to sampling usage.
func (d *Device) sampleTarget(id gpucore.TargetID) {
	rt, ok := d.targets[id]
	if !ok || rt.sampled {
		return
	}
	d.frame.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})
	rt.sampled = true
}

// buffer creates a frame-lifetime buffer holding data.
func (d *Device) buffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer: %w", label, err)
	}
	d.frame.buffers = append(d.frame.buffers, buf)
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Present implements gpucore.Device. It submits the frame and waits for the
// GPU to finish it.
func (d *Device) Present() error {
	if d.frame == nil {
		return ErrNoFrame
	}
	defer d.releaseFrame()

	// Leave every render target ready to be sampled next frame.
	for id := range d.targets {
		d.sampleTarget(id)
	}

	cmdBuf, err := d.frame.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return err
	}
	d.frames++
	return nil
}

func (d *Device) submit(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

func (d *Device) releaseFrame() {
	for _, bg := range d.frame.groups {
		d.device.DestroyBindGroup(bg)
	}
	for _, buf := range d.frame.buffers {
		d.device.DestroyBuffer(buf)
	}
	d.frame = nil
}

// ReadSurface copies the offscreen surface back to the CPU. It returns
// ErrHostSurface when a host view is installed.
func (d *Device) ReadSurface() (*image.RGBA, error) {
	if d.surface.host {
		return nil, ErrHostSurface
	}
	if d.frame != nil {
		return nil, ErrFrameInProgress
	}
	if d.surface.tex == nil {
		return image.NewRGBA(image.Rectangle{}), nil
	}
	w, h := uint32(d.surface.width), uint32(d.surface.height) //nolint:gosec // surface size is positive

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ggame_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ggame_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// WebGPU requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * gpucore.BytesPerPixel
	alignedBytesPerRow := (bytesPerRow + 255) &^ 255
	size := uint64(alignedBytesPerRow) * uint64(h)
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggame_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.surface.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(d.surface.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.surface.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.surface.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := 0; row < int(h); row++ {
		src := readback[row*int(alignedBytesPerRow):]
		copy(img.Pix[row*img.Stride:(row+1)*img.Stride], src[:bytesPerRow])
	}
	return img, nil
}
