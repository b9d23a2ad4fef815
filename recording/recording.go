package recording

import (
	"fmt"

	"github.com/gogpu/ggame/gpucore"
)

// Recording is an immutable sequence of device calls. It can be replayed to
// any gpucore.Device; IDs are remapped to those the target device returns.
type Recording struct {
	commands []Command
}

// Commands returns the recorded commands. The slice must not be modified.
func (r *Recording) Commands() []Command { return r.commands }

// Len returns the number of commands.
func (r *Recording) Len() int { return len(r.commands) }

// Frames returns the number of complete frames in the recording.
func (r *Recording) Frames() int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == CmdPresent {
			n++
		}
	}
	return n
}

// Playback replays the recording to dst. Resources created during playback
// and still alive at the end are destroyed again, so dst is left as it was
// found.
func (r *Recording) Playback(dst gpucore.Device) error {
	p := player{
		dst:      dst,
		textures: make(map[gpucore.TextureID]gpucore.TextureID),
		shaders:  make(map[gpucore.ShaderID]gpucore.ShaderID),
		targets:  make(map[gpucore.TargetID]gpucore.TargetID),
	}
	defer p.cleanup()

	for i, cmd := range r.commands {
		if err := p.play(cmd); err != nil {
			return fmt.Errorf("recording: playback command %d (%v): %w", i, cmd.Type(), err)
		}
	}
	return nil
}

type player struct {
	dst gpucore.Device

	textures map[gpucore.TextureID]gpucore.TextureID
	shaders  map[gpucore.ShaderID]gpucore.ShaderID
	targets  map[gpucore.TargetID]gpucore.TargetID
	// owned maps a recorded target to its recorded color texture.
	owned map[gpucore.TargetID]gpucore.TextureID
}

func (p *player) play(cmd Command) error {
	switch c := cmd.(type) {
	case CreateTextureArrayCommand:
		id, err := p.dst.CreateTextureArray(&c.Desc)
		if err != nil {
			return err
		}
		p.textures[c.ID] = id
	case DestroyTextureArrayCommand:
		if id, ok := p.textures[c.ID]; ok {
			p.dst.DestroyTextureArray(id)
			delete(p.textures, c.ID)
		}
	case CreateShaderCommand:
		id, err := p.dst.CreateShader(&c.Desc)
		if err != nil {
			return err
		}
		p.shaders[c.ID] = id
	case DestroyShaderCommand:
		if id, ok := p.shaders[c.ID]; ok {
			p.dst.DestroyShader(id)
			delete(p.shaders, c.ID)
		}
	case CreateRenderTargetCommand:
		id, tex, err := p.dst.CreateRenderTarget(&c.Desc)
		if err != nil {
			return err
		}
		p.targets[c.ID] = id
		p.textures[c.Texture] = tex
		if p.owned == nil {
			p.owned = make(map[gpucore.TargetID]gpucore.TextureID)
		}
		p.owned[c.ID] = c.Texture
	case DestroyRenderTargetCommand:
		if id, ok := p.targets[c.ID]; ok {
			p.dst.DestroyRenderTarget(id)
			delete(p.targets, c.ID)
			delete(p.textures, p.owned[c.ID])
			delete(p.owned, c.ID)
		}
	case BeginFrameCommand:
		return p.dst.BeginFrame(c.Width, c.Height)
	case ClearCommand:
		target, err := p.target(c.Target)
		if err != nil {
			return err
		}
		return p.dst.Clear(target, c.Color)
	case DrawCommand:
		call := c.Call
		target, err := p.target(call.Target)
		if err != nil {
			return err
		}
		shader, ok := p.shaders[call.Shader]
		if !ok {
			return fmt.Errorf("unknown shader %d", call.Shader)
		}
		tex, ok := p.textures[call.Texture]
		if !ok {
			return fmt.Errorf("unknown texture %d", call.Texture)
		}
		call.Target, call.Shader, call.Texture = target, shader, tex
		return p.dst.Draw(&call)
	case PresentCommand:
		return p.dst.Present()
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func (p *player) target(id gpucore.TargetID) (gpucore.TargetID, error) {
	if id == gpucore.Surface {
		return gpucore.Surface, nil
	}
	t, ok := p.targets[id]
	if !ok {
		return 0, fmt.Errorf("unknown render target %d", id)
	}
	return t, nil
}

func (p *player) cleanup() {
	for rec, id := range p.targets {
		p.dst.DestroyRenderTarget(id)
		delete(p.textures, p.owned[rec])
	}
	for _, id := range p.shaders {
		p.dst.DestroyShader(id)
	}
	for _, id := range p.textures {
		p.dst.DestroyTextureArray(id)
	}
}
