package graphics

import (
	"fmt"
	"image/color"
	"strconv"
)

// RGBA is a straight (non-premultiplied) color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)

// RGB returns an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// FromColor converts a standard library color.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// ParseHex parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA". The leading
// '#' is optional.
func ParseHex(s string) (RGBA, error) {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 3, 4:
		expanded := make([]byte, 0, len(s)*2)
		for i := 0; i < len(s); i++ {
			expanded = append(expanded, s[i], s[i])
		}
		s = string(expanded)
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("graphics: invalid hex color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("graphics: invalid hex color %q: %w", s, err)
	}
	return RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Premultiply returns the color with R, G and B scaled by A.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Mul multiplies two colors component-wise.
func (c RGBA) Mul(o RGBA) RGBA {
	return RGBA{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Lerp interpolates linearly between c and o.
func (c RGBA) Lerp(o RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// Float32 returns the components as a float32 array in RGBA order.
func (c RGBA) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// NRGBA converts to a standard library color, clamping each component.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
