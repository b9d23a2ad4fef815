package recording

import (
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

// CommandType identifies a recorded device call.
type CommandType uint8

const (
	// Resource commands
	CmdCreateTextureArray CommandType = iota
	CmdDestroyTextureArray
	CmdCreateShader
	CmdDestroyShader
	CmdCreateRenderTarget
	CmdDestroyRenderTarget

	// Frame commands
	CmdBeginFrame
	CmdClear
	CmdDraw
	CmdPresent
)

var commandTypeNames = [...]string{
	CmdCreateTextureArray:  "CreateTextureArray",
	CmdDestroyTextureArray: "DestroyTextureArray",
	CmdCreateShader:        "CreateShader",
	CmdDestroyShader:       "DestroyShader",
	CmdCreateRenderTarget:  "CreateRenderTarget",
	CmdDestroyRenderTarget: "DestroyRenderTarget",
	CmdBeginFrame:          "BeginFrame",
	CmdClear:               "Clear",
	CmdDraw:                "Draw",
	CmdPresent:             "Present",
}

// String returns the command name.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded device call.
type Command interface {
	Type() CommandType
}

// CreateTextureArrayCommand records a texture array upload. Layers are
// copied so the recording does not alias caller buffers.
type CreateTextureArrayCommand struct {
	ID   gpucore.TextureID
	Desc gpucore.TextureArrayDescriptor
}

// DestroyTextureArrayCommand records a texture array release.
type DestroyTextureArrayCommand struct {
	ID gpucore.TextureID
}

// CreateShaderCommand records a shader creation.
type CreateShaderCommand struct {
	ID   gpucore.ShaderID
	Desc gpucore.ShaderDescriptor
}

// DestroyShaderCommand records a shader release.
type DestroyShaderCommand struct {
	ID gpucore.ShaderID
}

// CreateRenderTargetCommand records a render target creation.
type CreateRenderTargetCommand struct {
	ID      gpucore.TargetID
	Texture gpucore.TextureID
	Desc    gpucore.RenderTargetDescriptor
}

// DestroyRenderTargetCommand records a render target release.
type DestroyRenderTargetCommand struct {
	ID gpucore.TargetID
}

// BeginFrameCommand records the start of a frame.
type BeginFrameCommand struct {
	Width, Height int
}

// ClearCommand records an explicit clear.
type ClearCommand struct {
	Target gpucore.TargetID
	Color  graphics.RGBA
}

// DrawCommand records an instanced draw. Instances are copied.
type DrawCommand struct {
	Call gpucore.DrawCall
}

// PresentCommand records the end of a frame.
type PresentCommand struct{}

func (CreateTextureArrayCommand) Type() CommandType  { return CmdCreateTextureArray }
func (DestroyTextureArrayCommand) Type() CommandType { return CmdDestroyTextureArray }
func (CreateShaderCommand) Type() CommandType        { return CmdCreateShader }
func (DestroyShaderCommand) Type() CommandType       { return CmdDestroyShader }
func (CreateRenderTargetCommand) Type() CommandType  { return CmdCreateRenderTarget }
func (DestroyRenderTargetCommand) Type() CommandType { return CmdDestroyRenderTarget }
func (BeginFrameCommand) Type() CommandType          { return CmdBeginFrame }
func (ClearCommand) Type() CommandType               { return CmdClear }
func (DrawCommand) Type() CommandType                { return CmdDraw }
func (PresentCommand) Type() CommandType             { return CmdPresent }
