package batch

import (
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/resource"
)

// Slot locates a sprite inside a texture array: the array, the layer and
// the normalized source rectangle within that layer.
type Slot struct {
	Array resource.TextureArray
	Layer int
	UV    graphics.Rect
}

// FullSlot returns a slot covering the whole of one layer.
func FullSlot(array resource.TextureArray, layer int) Slot {
	return Slot{Array: array, Layer: layer, UV: graphics.FullUV}
}

// Command draws one textured quad. The quad spans the unit square, so
// Transform maps (0,0)-(1,1) to target pixels.
type Command struct {
	Target    resource.RenderTarget
	Shader    resource.Shader
	Source    Slot
	Transform graphics.Matrix
	Tint      graphics.RGBA
	Blend     graphics.BlendMode
}

// Key returns the render state that decides batch membership.
func (c Command) Key() Key {
	return Key{
		Target: c.Target,
		Shader: c.Shader,
		Array:  c.Source.Array,
		Blend:  c.Blend,
	}
}

// Key is the render state shared by all commands of a batch.
type Key struct {
	Target resource.RenderTarget
	Shader resource.Shader
	Array  resource.TextureArray
	Blend  graphics.BlendMode
}

// Batch is a run of adjacent commands with one key, in submission order.
// A batch produced for an explicit clear has Clear set and no commands.
type Batch struct {
	Key      Key
	Commands []Command
	Clear    *graphics.RGBA
}

// IsClear reports whether b is a clear.
func (b *Batch) IsClear() bool { return b.Clear != nil }
