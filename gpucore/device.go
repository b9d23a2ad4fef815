package gpucore

import "github.com/gogpu/ggame/graphics"

// Device is the capability set every rendering backend provides: create and
// destroy resources, submit batched draws and present.
//
// A frame is BeginFrame, any number of Clear and Draw calls, then Present.
// Calls within a frame execute in order. Backends may queue GPU work until
// Present, which is the only point at which the caller may block.
//
// Devices are used from a single goroutine.
type Device interface {
	// Name returns the backend name, e.g. "software" or "wgpu".
	Name() string

	// Limits returns the device capacities.
	Limits() Limits

	CreateTextureArray(desc *TextureArrayDescriptor) (TextureID, error)
	DestroyTextureArray(id TextureID)

	CreateShader(desc *ShaderDescriptor) (ShaderID, error)
	DestroyShader(id ShaderID)

	// CreateRenderTarget returns the target and the texture array ID under
	// which its color buffer can be sampled.
	CreateRenderTarget(desc *RenderTargetDescriptor) (TargetID, TextureID, error)
	DestroyRenderTarget(id TargetID)

	// BeginFrame starts a frame on a surface of the given size.
	BeginFrame(width, height int) error

	// Clear fills a target with a straight-alpha color.
	Clear(target TargetID, color graphics.RGBA) error

	// Draw renders every instance of the call in one draw operation.
	Draw(call *DrawCall) error

	// Present finishes the frame and shows the surface.
	Present() error

	// Destroy releases the device's own objects. Resources created through
	// it must already be destroyed.
	Destroy()
}

// DrawCall is one instanced draw.
type DrawCall struct {
	Target       TargetID
	TargetWidth  int
	TargetHeight int

	Shader  ShaderID
	Texture TextureID
	Blend   graphics.BlendMode

	Instances []Instance
}
