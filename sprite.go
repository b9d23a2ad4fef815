package ggame

import (
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/resource"
)

// Sprite draws one layer of a texture array, or a part of it.
//
// The zero Scale draws nothing and the zero Tint is transparent; NewSprite
// fills in the identity values.
type Sprite struct {
	Texture resource.TextureArray
	Layer   int
	// Source is the normalized rectangle of the layer to draw. The zero
	// Rect means the whole layer.
	Source graphics.Rect

	// Position is where Origin lands on the target.
	Position graphics.Point
	// Origin is the pivot in unscaled sprite pixels for scaling and rotation.
	Origin   graphics.Point
	Scale    graphics.Point
	Rotation float64

	Tint  graphics.RGBA
	Blend graphics.BlendMode
	// Shader overrides the built-in sprite shader.
	Shader resource.Shader
}

// NewSprite returns a sprite of one whole layer at the origin, unscaled and
// untinted.
func NewSprite(tex resource.TextureArray, layer int) Sprite {
	return Sprite{
		Texture: tex,
		Layer:   layer,
		Source:  graphics.FullUV,
		Scale:   graphics.Pt(1, 1),
		Tint:    graphics.White,
		Blend:   graphics.BlendAlpha,
	}
}

// local maps sprite pixels to target pixels.
func (s Sprite) local() graphics.Matrix {
	return graphics.Translate(s.Position.X, s.Position.Y).
		Multiply(graphics.Rotate(s.Rotation)).
		Multiply(graphics.Scale(s.Scale.X, s.Scale.Y)).
		Multiply(graphics.Translate(-s.Origin.X, -s.Origin.Y))
}
