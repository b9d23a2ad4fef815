package gpucore

// Resource IDs
//
// IDs are opaque handles into a device's own resource tables. They are not
// generation checked; the resource registry layers generations on top.

// TextureID identifies a texture array on a device.
type TextureID uint64

// ShaderID identifies a shader program on a device.
type ShaderID uint64

// TargetID identifies an off-screen render target on a device.
type TargetID uint64

// InvalidID is the zero value of every ID type.
const InvalidID = 0

// Surface is the TargetID of the presentable surface.
const Surface TargetID = 0

// BytesPerPixel is the size of one RGBA8 texel.
const BytesPerPixel = 4

// TextureArrayDescriptor describes a texture array upload. Layers holds one
// premultiplied RGBA8 buffer of Width*Height*4 bytes per layer.
type TextureArrayDescriptor struct {
	Label  string
	Width  int
	Height int
	Layers [][]byte
}

// BuiltinShader names a program every backend implements.
type BuiltinShader uint8

const (
	// ShaderCustom means the descriptor carries its own WGSL source.
	ShaderCustom BuiltinShader = iota
	// ShaderSprite samples the texture layer and multiplies by the tint.
	ShaderSprite
	// ShaderSolid ignores the texture and fills with the tint.
	ShaderSolid
)

// String returns the shader name.
func (s BuiltinShader) String() string {
	switch s {
	case ShaderCustom:
		return "custom"
	case ShaderSprite:
		return "sprite"
	case ShaderSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// ShaderDescriptor describes a shader program. A custom shader must expose
// vs_main and fs_main and consume the instance layout documented on
// Instance.
type ShaderDescriptor struct {
	Label   string
	Builtin BuiltinShader
	WGSL    string
}

// RenderTargetDescriptor describes an off-screen target. The color buffer is
// RGBA8 and can be sampled as a one-layer texture array.
type RenderTargetDescriptor struct {
	Label  string
	Width  int
	Height int
	Depth  bool
}

// Limits reports device capacities relevant to the pipeline.
type Limits struct {
	MaxTextureSize int
	MaxArrayLayers int
}

// DefaultLimits are the WebGPU downlevel defaults.
func DefaultLimits() Limits {
	return Limits{MaxTextureSize: 8192, MaxArrayLayers: 256}
}
