package recording

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

// ErrInjected is the default error returned by operations armed with FailOn.
var ErrInjected = errors.New("recording: injected failure")

// Recorder is a gpucore.Device that captures every call as a Command.
//
// With a nil inner device the Recorder is standalone: it assigns IDs itself
// and accepts every call. Otherwise calls are forwarded to inner and only
// successful ones are recorded.
//
// Example:
//
//	rec := recording.New(nil)
//	reg := resource.NewRegistry(rec)
//	// ... draw frames ...
//	r := rec.Finish()
//	err := r.Playback(softwareDevice)
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	inner    gpucore.Device
	limits   gpucore.Limits
	commands []Command
	nextID   uint64
	failures map[CommandType]error
	frames   int

	textures map[gpucore.TextureID]bool
	shaders  map[gpucore.ShaderID]bool
	targets  map[gpucore.TargetID]bool
}

var _ gpucore.Device = (*Recorder)(nil)

// New returns a Recorder forwarding to inner, or a standalone one when inner
// is nil.
func New(inner gpucore.Device) *Recorder {
	limits := gpucore.DefaultLimits()
	if inner != nil {
		limits = inner.Limits()
	}
	return &Recorder{
		inner:    inner,
		limits:   limits,
		commands: make([]Command, 0, 64),
		failures: make(map[CommandType]error),
		textures: make(map[gpucore.TextureID]bool),
		shaders:  make(map[gpucore.ShaderID]bool),
		targets:  make(map[gpucore.TargetID]bool),
	}
}

// SetLimits overrides the limits reported by a standalone Recorder.
func (r *Recorder) SetLimits(l gpucore.Limits) { r.limits = l }

// FailOn makes every later call of type op fail with err, or ErrInjected
// when err is nil. Only fallible operations can be armed.
func (r *Recorder) FailOn(op CommandType, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.failures[op] = err
}

// ClearFailures disarms all injected failures.
func (r *Recorder) ClearFailures() { clear(r.failures) }

// Commands returns the commands recorded so far.
func (r *Recorder) Commands() []Command { return slices.Clone(r.commands) }

// CommandsOf returns the recorded commands of one type.
func (r *Recorder) CommandsOf(op CommandType) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Type() == op {
			out = append(out, c)
		}
	}
	return out
}

// Draws returns the recorded draw calls in order.
func (r *Recorder) Draws() []gpucore.DrawCall {
	var out []gpucore.DrawCall
	for _, c := range r.commands {
		if d, ok := c.(DrawCommand); ok {
			out = append(out, d.Call)
		}
	}
	return out
}

// Frames returns the number of presented frames.
func (r *Recorder) Frames() int { return r.frames }

// Live returns the number of live device objects by kind.
func (r *Recorder) Live() (textures, shaders, targets int) {
	return len(r.textures), len(r.shaders), len(r.targets)
}

// Reset discards the recorded commands. Live objects are kept.
func (r *Recorder) Reset() { r.commands = r.commands[:0] }

// Finish returns an immutable Recording of the commands captured so far.
func (r *Recorder) Finish() *Recording {
	return &Recording{commands: slices.Clone(r.commands)}
}

// Name implements gpucore.Device.
func (r *Recorder) Name() string {
	if r.inner != nil {
		return "recording+" + r.inner.Name()
	}
	return "recording"
}

// Limits implements gpucore.Device.
func (r *Recorder) Limits() gpucore.Limits { return r.limits }

func (r *Recorder) fail(op CommandType) error {
	if err, ok := r.failures[op]; ok {
		return fmt.Errorf("recording: %v: %w", op, err)
	}
	return nil
}

func (r *Recorder) id() uint64 {
	r.nextID++
	return r.nextID
}

// CreateTextureArray implements gpucore.Device.
func (r *Recorder) CreateTextureArray(desc *gpucore.TextureArrayDescriptor) (gpucore.TextureID, error) {
	if err := r.fail(CmdCreateTextureArray); err != nil {
		return gpucore.InvalidID, err
	}
	var id gpucore.TextureID
	if r.inner != nil {
		var err error
		if id, err = r.inner.CreateTextureArray(desc); err != nil {
			return gpucore.InvalidID, err
		}
	} else {
		id = gpucore.TextureID(r.id())
	}
	cp := *desc
	cp.Layers = make([][]byte, len(desc.Layers))
	for i, l := range desc.Layers {
		cp.Layers[i] = slices.Clone(l)
	}
	r.textures[id] = true
	r.commands = append(r.commands, CreateTextureArrayCommand{ID: id, Desc: cp})
	return id, nil
}

// DestroyTextureArray implements gpucore.Device.
func (r *Recorder) DestroyTextureArray(id gpucore.TextureID) {
	if r.inner != nil {
		r.inner.DestroyTextureArray(id)
	}
	delete(r.textures, id)
	r.commands = append(r.commands, DestroyTextureArrayCommand{ID: id})
}

// CreateShader implements gpucore.Device.
func (r *Recorder) CreateShader(desc *gpucore.ShaderDescriptor) (gpucore.ShaderID, error) {
	if err := r.fail(CmdCreateShader); err != nil {
		return gpucore.InvalidID, err
	}
	var id gpucore.ShaderID
	if r.inner != nil {
		var err error
		if id, err = r.inner.CreateShader(desc); err != nil {
			return gpucore.InvalidID, err
		}
	} else {
		id = gpucore.ShaderID(r.id())
	}
	r.shaders[id] = true
	r.commands = append(r.commands, CreateShaderCommand{ID: id, Desc: *desc})
	return id, nil
}

// DestroyShader implements gpucore.Device.
func (r *Recorder) DestroyShader(id gpucore.ShaderID) {
	if r.inner != nil {
		r.inner.DestroyShader(id)
	}
	delete(r.shaders, id)
	r.commands = append(r.commands, DestroyShaderCommand{ID: id})
}

// CreateRenderTarget implements gpucore.Device.
func (r *Recorder) CreateRenderTarget(desc *gpucore.RenderTargetDescriptor) (gpucore.TargetID, gpucore.TextureID, error) {
	if err := r.fail(CmdCreateRenderTarget); err != nil {
		return gpucore.InvalidID, gpucore.InvalidID, err
	}
	var (
		id  gpucore.TargetID
		tex gpucore.TextureID
	)
	if r.inner != nil {
		var err error
		if id, tex, err = r.inner.CreateRenderTarget(desc); err != nil {
			return gpucore.InvalidID, gpucore.InvalidID, err
		}
	} else {
		id = gpucore.TargetID(r.id())
		tex = gpucore.TextureID(r.id())
	}
	r.targets[id] = true
	r.commands = append(r.commands, CreateRenderTargetCommand{ID: id, Texture: tex, Desc: *desc})
	return id, tex, nil
}

// DestroyRenderTarget implements gpucore.Device.
func (r *Recorder) DestroyRenderTarget(id gpucore.TargetID) {
	if r.inner != nil {
		r.inner.DestroyRenderTarget(id)
	}
	delete(r.targets, id)
	r.commands = append(r.commands, DestroyRenderTargetCommand{ID: id})
}

// BeginFrame implements gpucore.Device.
func (r *Recorder) BeginFrame(width, height int) error {
	if err := r.fail(CmdBeginFrame); err != nil {
		return err
	}
	if r.inner != nil {
		if err := r.inner.BeginFrame(width, height); err != nil {
			return err
		}
	}
	r.commands = append(r.commands, BeginFrameCommand{Width: width, Height: height})
	return nil
}

// Clear implements gpucore.Device.
func (r *Recorder) Clear(target gpucore.TargetID, color graphics.RGBA) error {
	if err := r.fail(CmdClear); err != nil {
		return err
	}
	if r.inner != nil {
		if err := r.inner.Clear(target, color); err != nil {
			return err
		}
	}
	r.commands = append(r.commands, ClearCommand{Target: target, Color: color})
	return nil
}

// Draw implements gpucore.Device.
func (r *Recorder) Draw(call *gpucore.DrawCall) error {
	if err := r.fail(CmdDraw); err != nil {
		return err
	}
	if r.inner != nil {
		if err := r.inner.Draw(call); err != nil {
			return err
		}
	}
	cp := *call
	cp.Instances = slices.Clone(call.Instances)
	r.commands = append(r.commands, DrawCommand{Call: cp})
	return nil
}

// Present implements gpucore.Device.
func (r *Recorder) Present() error {
	if err := r.fail(CmdPresent); err != nil {
		return err
	}
	if r.inner != nil {
		if err := r.inner.Present(); err != nil {
			return err
		}
	}
	r.frames++
	r.commands = append(r.commands, PresentCommand{})
	return nil
}

// Destroy implements gpucore.Device.
func (r *Recorder) Destroy() {
	if r.inner != nil {
		r.inner.Destroy()
	}
}
