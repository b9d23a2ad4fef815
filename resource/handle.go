package resource

import "fmt"

// Kind is the type of resource a handle refers to.
type Kind uint8

// Resource kinds.
const (
	KindTextureArray Kind = iota + 1
	KindShader
	KindRenderTarget
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTextureArray:
		return "texture-array"
	case KindShader:
		return "shader"
	case KindRenderTarget:
		return "render-target"
	default:
		return "invalid"
	}
}

// Handle is a generation-checked reference to a registry slot. The zero
// Handle is never valid. Handles are comparable and may be used as map keys.
type Handle struct {
	registry   uint32
	index      uint32
	generation uint32
	kind       Kind
}

// Kind returns the resource kind.
func (h Handle) Kind() Kind { return h.kind }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// String formats the handle for logs and errors.
func (h Handle) String() string {
	if h.IsZero() {
		return "handle(none)"
	}
	return fmt.Sprintf("%s(%d.%d#%d)", h.kind, h.index, h.generation, h.registry)
}

// TextureArray refers to a texture array.
type TextureArray struct{ h Handle }

// Handle returns the untyped handle.
func (t TextureArray) Handle() Handle { return t.h }

// IsZero reports whether t is unset.
func (t TextureArray) IsZero() bool { return t.h.IsZero() }

func (t TextureArray) String() string { return t.h.String() }

// Shader refers to a shader program.
type Shader struct{ h Handle }

// Handle returns the untyped handle.
func (s Shader) Handle() Handle { return s.h }

// IsZero reports whether s is unset.
func (s Shader) IsZero() bool { return s.h.IsZero() }

func (s Shader) String() string { return s.h.String() }

// RenderTarget refers to an off-screen render target. The zero value stands
// for the presentable surface wherever a draw destination is expected.
type RenderTarget struct{ h Handle }

// Handle returns the untyped handle.
func (t RenderTarget) Handle() Handle { return t.h }

// IsSurface reports whether t is the zero value, meaning the surface.
func (t RenderTarget) IsSurface() bool { return t.h.IsZero() }

func (t RenderTarget) String() string {
	if t.IsSurface() {
		return "surface"
	}
	return t.h.String()
}
