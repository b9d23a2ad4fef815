// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/internal/logging"
)

var (
	// ErrUnknownID is returned for a device ID this device never issued.
	ErrUnknownID = errors.New("wgpu: unknown id")

	// ErrNoFrame is returned for frame calls outside BeginFrame/Present.
	ErrNoFrame = errors.New("wgpu: no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame before the previous frame
	// was presented.
	ErrFrameInProgress = errors.New("wgpu: frame already in progress")

	// ErrHostSurface is returned by ReadSurface when the surface belongs to
	// the host.
	ErrHostSurface = errors.New("wgpu: surface is owned by the host")
)

// colorFormat is the format of textures, render targets and the offscreen
// surface.
const colorFormat = gputypes.TextureFormatRGBA8Unorm

type textureArray struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	layers int
	// target is set for the color buffer of a render target.
	target gpucore.TargetID
}

type renderTarget struct {
	tex       hal.Texture
	view      hal.TextureView
	texture   gpucore.TextureID
	depthTex  hal.Texture
	depthView hal.TextureView
	width     int
	height    int
	// sampled reports that the color buffer was last transitioned for
	// sampling.
	sampled bool
}

type shaderModule struct {
	module  hal.ShaderModule
	builtin gpucore.BuiltinShader
}

// surface is the presentable target. Without a host view it is an
// offscreen texture the device owns.
type surface struct {
	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	width  int
	height int
	host   bool
}

// Device renders batches with the gogpu/wgpu HAL.
//
// Each Clear and each Draw is one render pass; a frame is recorded into a
// single command buffer and submitted at Present, which waits for the GPU.
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue
	name   string
	limits gpucore.Limits
	spirv  bool
	// release destroys the device and instance when the Device opened them.
	release func()

	pipelines *pipelineCache
	sampler   hal.Sampler

	nextID   uint64
	textures map[gpucore.TextureID]*textureArray
	shaders  map[gpucore.ShaderID]*shaderModule
	targets  map[gpucore.TargetID]*renderTarget

	surface surface
	frame   *frame
	frames  int
}

var _ gpucore.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithSPIRV compiles shaders to SPIR-V with naga before creating modules,
// for HALs that do not accept WGSL.
func WithSPIRV() Option {
	return func(d *Device) { d.spirv = true }
}

// WithLimits overrides the reported device limits.
func WithLimits(l gpucore.Limits) Option {
	return func(d *Device) { d.limits = l }
}

// WithName overrides the backend name reported by Name.
func WithName(name string) Option {
	return func(d *Device) { d.name = name }
}

func withRelease(fn func()) Option {
	return func(d *Device) { d.release = fn }
}

// New wraps an open HAL device and queue. The caller keeps ownership of
// both unless the device was created by Open.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil device or queue")
	}
	d := &Device{
		device:   device,
		queue:    queue,
		name:     "wgpu",
		limits:   gpucore.DefaultLimits(),
		textures: make(map[gpucore.TextureID]*textureArray),
		shaders:  make(map[gpucore.ShaderID]*shaderModule),
		targets:  make(map[gpucore.TargetID]*renderTarget),
		surface:  surface{format: colorFormat},
	}
	for _, opt := range opts {
		opt(d)
	}

	pipelines, err := newPipelineCache(device)
	if err != nil {
		return nil, err
	}
	d.pipelines = pipelines

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ggame_nearest_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		pipelines.destroy()
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	d.sampler = sampler
	return d, nil
}

// Name implements gpucore.Device.
func (d *Device) Name() string { return d.name }

// Limits implements gpucore.Device.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// CreateTextureArray implements gpucore.Device.
func (d *Device) CreateTextureArray(desc *gpucore.TextureArrayDescriptor) (gpucore.TextureID, error) {
	n := len(desc.Layers)
	if desc.Width <= 0 || desc.Height <= 0 || n == 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: invalid texture array %dx%dx%d", desc.Width, desc.Height, n)
	}
	want := desc.Width * desc.Height * gpucore.BytesPerPixel
	for i, layer := range desc.Layers {
		if len(layer) != want {
			return gpucore.InvalidID, fmt.Errorf("wgpu: layer %d has %d bytes, want %d", i, len(layer), want)
		}
	}

	w, h := uint32(desc.Width), uint32(desc.Height) //nolint:gosec // validated positive
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: uint32(n)}, //nolint:gosec // bounded by limits
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture array: %w", err)
	}
	view, err := d.arrayView(tex, desc.Label)
	if err != nil {
		d.device.DestroyTexture(tex)
		return gpucore.InvalidID, err
	}

	for i, layer := range desc.Layers {
		d.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: 0, Y: 0, Z: uint32(i)}, //nolint:gosec // bounded by layer count
				Aspect:   gputypes.TextureAspectAll,
			},
			layer,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  w * gpucore.BytesPerPixel,
				RowsPerImage: h,
			},
			&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
	}

	id := gpucore.TextureID(d.id())
	d.textures[id] = &textureArray{tex: tex, view: view, width: desc.Width, height: desc.Height, layers: n}
	return id, nil
}

func (d *Device) arrayView(tex hal.Texture, label string) (hal.TextureView, error) {
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_array_view",
		Format:        colorFormat,
		Dimension:     gputypes.TextureViewDimension2DArray,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture array view: %w", err)
	}
	return view, nil
}

// DestroyTextureArray implements gpucore.Device. The color buffer of a
// render target is destroyed with its target.
func (d *Device) DestroyTextureArray(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok || t.target != 0 {
		return
	}
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
	delete(d.textures, id)
}

// CreateShader implements gpucore.Device.
func (d *Device) CreateShader(desc *gpucore.ShaderDescriptor) (gpucore.ShaderID, error) {
	var source string
	switch desc.Builtin {
	case gpucore.ShaderSprite:
		source = spriteShaderSource
	case gpucore.ShaderSolid:
		source = solidShaderSource
	case gpucore.ShaderCustom:
		source = desc.WGSL
	default:
		return gpucore.InvalidID, fmt.Errorf("wgpu: unknown builtin shader %d", desc.Builtin)
	}
	label := desc.Label
	if label == "" {
		label = desc.Builtin.String()
	}

	shaderSource := hal.ShaderSource{WGSL: source}
	if d.spirv {
		words, err := compileSPIRV(source)
		if err != nil {
			return gpucore.InvalidID, err
		}
		shaderSource = hal.ShaderSource{SPIRV: words}
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: shaderSource,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: compile %s shader: %w", label, err)
	}

	id := gpucore.ShaderID(d.id())
	d.shaders[id] = &shaderModule{module: module, builtin: desc.Builtin}
	return id, nil
}

// DestroyShader implements gpucore.Device.
func (d *Device) DestroyShader(id gpucore.ShaderID) {
	s, ok := d.shaders[id]
	if !ok {
		return
	}
	d.pipelines.evict(id)
	d.device.DestroyShaderModule(s.module)
	delete(d.shaders, id)
}

// CreateRenderTarget implements gpucore.Device.
func (d *Device) CreateRenderTarget(desc *gpucore.RenderTargetDescriptor) (gpucore.TargetID, gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, 0, fmt.Errorf("wgpu: invalid render target %dx%d", desc.Width, desc.Height)
	}
	w, h := uint32(desc.Width), uint32(desc.Height) //nolint:gosec // validated positive
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	rt := &renderTarget{width: desc.Width, height: desc.Height}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("wgpu: create render target: %w", err)
	}
	rt.tex = tex

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_color_view",
		Format:        colorFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.destroyTarget(rt, nil)
		return 0, 0, fmt.Errorf("wgpu: create render target view: %w", err)
	}
	rt.view = view

	sampleView, err := d.arrayView(tex, desc.Label)
	if err != nil {
		d.destroyTarget(rt, nil)
		return 0, 0, err
	}
	arr := &textureArray{tex: tex, view: sampleView, width: desc.Width, height: desc.Height, layers: 1}

	if desc.Depth {
		depthTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         desc.Label + "_depth",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatDepth24Plus,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			d.destroyTarget(rt, arr)
			return 0, 0, fmt.Errorf("wgpu: create depth texture: %w", err)
		}
		rt.depthTex = depthTex
		depthView, err := d.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
			Label: desc.Label + "_depth_view",
		})
		if err != nil {
			d.destroyTarget(rt, arr)
			return 0, 0, fmt.Errorf("wgpu: create depth view: %w", err)
		}
		rt.depthView = depthView
	}

	target := gpucore.TargetID(d.id())
	texID := gpucore.TextureID(d.id())
	arr.target = target
	rt.texture = texID
	d.targets[target] = rt
	d.textures[texID] = arr
	return target, texID, nil
}

// DestroyRenderTarget implements gpucore.Device.
func (d *Device) DestroyRenderTarget(id gpucore.TargetID) {
	rt, ok := d.targets[id]
	if !ok {
		return
	}
	d.destroyTarget(rt, d.textures[rt.texture])
	delete(d.textures, rt.texture)
	delete(d.targets, id)
}

func (d *Device) destroyTarget(rt *renderTarget, arr *textureArray) {
	if rt.depthView != nil {
		d.device.DestroyTextureView(rt.depthView)
	}
	if rt.depthTex != nil {
		d.device.DestroyTexture(rt.depthTex)
	}
	if arr != nil && arr.view != nil {
		d.device.DestroyTextureView(arr.view)
	}
	if rt.view != nil {
		d.device.DestroyTextureView(rt.view)
	}
	if rt.tex != nil {
		d.device.DestroyTexture(rt.tex)
	}
}

// Destroy implements gpucore.Device. Objects still registered are released
// with a warning.
func (d *Device) Destroy() {
	if d.device == nil {
		return
	}
	if d.frame != nil {
		d.frame.encoder.DiscardEncoding()
		d.releaseFrame()
	}
	if n := len(d.targets) + len(d.shaders) + len(d.textures); n > 0 {
		logging.Logger().Warn("wgpu: destroying device with live resources", "count", n)
	}
	for id := range d.targets {
		d.DestroyRenderTarget(id)
	}
	for id := range d.shaders {
		d.DestroyShader(id)
	}
	for id := range d.textures {
		d.DestroyTextureArray(id)
	}
	d.destroySurface()
	d.device.DestroySampler(d.sampler)
	d.pipelines.destroy()
	if d.release != nil {
		d.release()
	}
	d.device = nil
	d.queue = nil
}
