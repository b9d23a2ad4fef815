// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/batch"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/render"
	"github.com/gogpu/ggame/resource"
)

func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	d, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop failed: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func unitQuad(w, h float32) gpucore.Instance {
	return gpucore.Instance{
		Transform: [6]float32{w, 0, 0, 0, h, 0},
		UV:        [4]float32{0, 0, 1, 1},
		Tint:      [4]float32{1, 1, 1, 1},
	}
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{backend.BackendWGPU, backend.BackendNoop} {
		if !backend.IsRegistered(name) {
			t.Errorf("%s backend not registered", name)
		}
	}
	dev, err := backend.Open(backend.BackendNoop, backend.Config{})
	if err != nil {
		t.Fatalf("Open(noop) error = %v", err)
	}
	defer dev.Destroy()
	if dev.Name() != backend.BackendNoop {
		t.Errorf("Name() = %q, want %q", dev.Name(), backend.BackendNoop)
	}
}

func TestCreateDestroyResources(t *testing.T) {
	d := createNoopDevice(t)

	tex, err := d.CreateTextureArray(&gpucore.TextureArrayDescriptor{
		Label: "sprites", Width: 2, Height: 2,
		Layers: [][]byte{make([]byte, 16), make([]byte, 16)},
	})
	if err != nil {
		t.Fatalf("CreateTextureArray() error = %v", err)
	}
	shader, err := d.CreateShader(&gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSprite})
	if err != nil {
		t.Fatalf("CreateShader() error = %v", err)
	}
	target, targetTex, err := d.CreateRenderTarget(&gpucore.RenderTargetDescriptor{Label: "canvas", Width: 4, Height: 4, Depth: true})
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	if d.textures[targetTex].target != target {
		t.Error("render target texture not linked to its target")
	}

	// The color buffer of a target is only destroyed with the target.
	d.DestroyTextureArray(targetTex)
	if _, ok := d.textures[targetTex]; !ok {
		t.Error("DestroyTextureArray removed a render target color buffer")
	}

	d.DestroyRenderTarget(target)
	d.DestroyShader(shader)
	d.DestroyTextureArray(tex)
	if len(d.textures)+len(d.shaders)+len(d.targets) != 0 {
		t.Errorf("leaked %d textures, %d shaders, %d targets", len(d.textures), len(d.shaders), len(d.targets))
	}
}

func TestCreateTextureArrayErrors(t *testing.T) {
	d := createNoopDevice(t)
	tests := []struct {
		name string
		desc gpucore.TextureArrayDescriptor
	}{
		{"no layers", gpucore.TextureArrayDescriptor{Width: 1, Height: 1}},
		{"zero width", gpucore.TextureArrayDescriptor{Height: 1, Layers: [][]byte{{}}}},
		{"short layer", gpucore.TextureArrayDescriptor{Width: 2, Height: 2, Layers: [][]byte{make([]byte, 4)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.CreateTextureArray(&tt.desc); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFrameLifecycle(t *testing.T) {
	d := createNoopDevice(t)
	if err := d.Clear(gpucore.Surface, graphics.Black); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Clear outside frame = %v, want ErrNoFrame", err)
	}
	if err := d.Present(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Present outside frame = %v, want ErrNoFrame", err)
	}
	if err := d.BeginFrame(0, 10); err == nil {
		t.Error("BeginFrame(0, 10) should fail")
	}
	if err := d.BeginFrame(8, 8); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := d.BeginFrame(8, 8); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("second BeginFrame = %v, want ErrFrameInProgress", err)
	}
	if err := d.Clear(99, graphics.Black); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Clear(unknown) = %v, want ErrUnknownID", err)
	}
	if err := d.Draw(&gpucore.DrawCall{Shader: 42}); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Draw(unknown shader) = %v, want ErrUnknownID", err)
	}
	if err := d.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if d.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", d.Frames())
	}
}

func TestDrawReleasesFrameObjects(t *testing.T) {
	d := createNoopDevice(t)
	solid, _ := d.CreateShader(&gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSolid})
	tex, _ := d.CreateTextureArray(&gpucore.TextureArrayDescriptor{Width: 1, Height: 1, Layers: [][]byte{make([]byte, 4)}})

	_ = d.BeginFrame(4, 4)
	call := &gpucore.DrawCall{Shader: solid, Texture: tex, Instances: []gpucore.Instance{unitQuad(4, 4), unitQuad(2, 2)}}
	if err := d.Draw(call); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := len(d.frame.buffers); got != 2 {
		t.Errorf("frame buffers = %d, want uniform and instance buffer", got)
	}
	if got := len(d.frame.groups); got != 1 {
		t.Errorf("bind groups = %d, want 1", got)
	}
	if err := d.Present(); err != nil {
		t.Fatal(err)
	}
	if d.frame != nil {
		t.Error("frame state kept after Present")
	}
}

func TestPipelineCache(t *testing.T) {
	d := createNoopDevice(t)
	solid, _ := d.CreateShader(&gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSolid})
	tex, _ := d.CreateTextureArray(&gpucore.TextureArrayDescriptor{Width: 1, Height: 1, Layers: [][]byte{make([]byte, 4)}})

	_ = d.BeginFrame(4, 4)
	for _, blend := range []graphics.BlendMode{graphics.BlendAlpha, graphics.BlendAlpha, graphics.BlendAdd} {
		call := &gpucore.DrawCall{Shader: solid, Texture: tex, Blend: blend, Instances: []gpucore.Instance{unitQuad(1, 1)}}
		if err := d.Draw(call); err != nil {
			t.Fatal(err)
		}
	}
	_ = d.Present()
	if got := len(d.pipelines.pipelines); got != 2 {
		t.Errorf("pipelines = %d, want one per blend mode", got)
	}

	d.DestroyShader(solid)
	if got := len(d.pipelines.pipelines); got != 0 {
		t.Errorf("pipelines after DestroyShader = %d, want 0", got)
	}
}

func TestRenderTargetSampling(t *testing.T) {
	d := createNoopDevice(t)
	sprite, _ := d.CreateShader(&gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSprite})
	target, targetTex, _ := d.CreateRenderTarget(&gpucore.RenderTargetDescriptor{Width: 4, Height: 4})

	_ = d.BeginFrame(8, 8)
	_ = d.Clear(target, graphics.Red)
	if d.targets[target].sampled {
		t.Error("target marked sampled after clear")
	}
	err := d.Draw(&gpucore.DrawCall{Shader: sprite, Texture: targetTex, Instances: []gpucore.Instance{unitQuad(8, 8)}})
	if err != nil {
		t.Fatal(err)
	}
	if !d.targets[target].sampled {
		t.Error("target not transitioned for sampling")
	}
	_ = d.Clear(target, graphics.Black)
	if d.targets[target].sampled {
		t.Error("target not transitioned back to attachment")
	}
	if err := d.Present(); err != nil {
		t.Fatal(err)
	}
}

func TestReadSurface(t *testing.T) {
	d := createNoopDevice(t)
	_ = d.BeginFrame(3, 2)
	if _, err := d.ReadSurface(); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("ReadSurface during frame = %v, want ErrFrameInProgress", err)
	}
	_ = d.Present()
	img, err := d.ReadSurface()
	if err != nil {
		t.Fatalf("ReadSurface() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("ReadSurface() bounds = %v, want 3x2", b)
	}

	d.SetSurfaceView(d.surface.view, colorFormat, 3, 2)
	if _, err := d.ReadSurface(); !errors.Is(err, ErrHostSurface) {
		t.Errorf("ReadSurface with host view = %v, want ErrHostSurface", err)
	}
}

func TestNewFromProviderRejectsForeignProvider(t *testing.T) {
	if _, err := NewFromProvider(struct{}{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}
}

// TestExecutorOnNoop runs registry, batch and executor on the noop HAL.
func TestExecutorOnNoop(t *testing.T) {
	d := createNoopDevice(t)
	reg := resource.NewRegistry(d)
	exec := render.NewExecutor(d, reg)
	exec.SetSurfaceSize(16, 16)

	sprite, err := reg.CreateShader(gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSprite})
	if err != nil {
		t.Fatal(err)
	}
	white, err := reg.CreateTextureArray(1, 1, []resource.Pixels{resource.SolidPixels(1, 1, graphics.White)})
	if err != nil {
		t.Fatal(err)
	}

	b := batch.NewBuilder()
	_ = b.Clear(resource.RenderTarget{}, graphics.Black)
	for i := 0; i < 3; i++ {
		_ = b.Draw(batch.Command{
			Shader: sprite, Source: batch.FullSlot(white, 0),
			Transform: graphics.Translate(float64(i), 0), Tint: graphics.White,
		})
	}
	batches, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := exec.Submit(batches); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if s := exec.Stats(); s.DrawCalls != 1 || s.Instances != 3 {
		t.Errorf("Stats() = %+v, want 1 draw of 3 instances", s)
	}
	reg.ReleaseAll()
}
