package resource

import (
	"fmt"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

// Pixels is a decoded RGBA8 image with premultiplied alpha, rows tightly
// packed top to bottom.
type Pixels struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixels allocates a transparent buffer.
func NewPixels(width, height int) Pixels {
	return Pixels{Width: width, Height: height, Pix: make([]byte, width*height*gpucore.BytesPerPixel)}
}

// SolidPixels returns a buffer filled with c.
func SolidPixels(width, height int, c graphics.RGBA) Pixels {
	p := NewPixels(width, height)
	n := c.Premultiply().NRGBA()
	for i := 0; i < len(p.Pix); i += 4 {
		p.Pix[i+0] = n.R
		p.Pix[i+1] = n.G
		p.Pix[i+2] = n.B
		p.Pix[i+3] = n.A
	}
	return p
}

// validate checks the buffer against the expected size.
func (p Pixels) validate(width, height int) error {
	if p.Width != width || p.Height != height {
		return fmt.Errorf("%w: layer is %dx%d, want %dx%d", ErrDimensionMismatch, p.Width, p.Height, width, height)
	}
	if want := width * height * gpucore.BytesPerPixel; len(p.Pix) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d, want %d", ErrInvalidPixels, len(p.Pix), width, height, want)
	}
	return nil
}
