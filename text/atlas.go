package text

import (
	"errors"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ggame/internal/cache"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/resource"
)

// cellPadding keeps glyph edges off the layer border so filtering never
// bleeds neighbouring pixels.
const cellPadding = 1

// layoutCacheSize bounds the shaped strings kept per atlas.
const layoutCacheSize = 256

// ASCII is the printable ASCII range, the default charset.
var ASCII = func() string {
	rs := make([]rune, 0, 0x7f-0x20)
	for r := rune(0x20); r < 0x7f; r++ {
		rs = append(rs, r)
	}
	return string(rs)
}()

// Metrics are vertical font metrics in pixels at the raster size.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

type glyph struct {
	layer int
	blank bool
}

// Atlas holds a font rasterized at one size, one glyph per layer. All layers
// share one cell size; the pen origin sits at the same point in every cell.
type Atlas struct {
	source  *Source
	size    float64
	metrics Metrics

	cellWidth, cellHeight int
	// origin is the baseline pen position inside a cell.
	origin image.Point

	glyphs map[sfnt.GlyphIndex]glyph
	layers []resource.Pixels

	layouts *cache.LRU[layoutKey, []Glyph]
}

type layoutKey struct {
	text string
	size float64
}

// Rasterize renders every rune of charset at size pixels. Runes the font has
// no glyph for are skipped, as are duplicates after NFC normalization.
func Rasterize(src *Source, size float64, charset string) (*Atlas, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, ErrInvalidSize
	}
	face, err := opentype.NewFace(src.outline, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	var buf sfnt.Buffer
	var runes []rune
	var ids []sfnt.GlyphIndex
	seen := make(map[sfnt.GlyphIndex]bool)
	for _, r := range norm.NFC.String(charset) {
		idx := src.glyphIndex(&buf, r)
		if idx == 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		runes = append(runes, r)
		ids = append(ids, idx)
	}
	if len(runes) == 0 {
		return nil, ErrNoGlyphs
	}

	fm := face.Metrics()
	a := &Atlas{
		source: src,
		size:   size,
		metrics: Metrics{
			Ascent:     fixedToFloat(fm.Ascent),
			Descent:    fixedToFloat(fm.Descent),
			LineHeight: fixedToFloat(fm.Height),
		},
		glyphs:  make(map[sfnt.GlyphIndex]glyph, len(runes)),
		layers:  make([]resource.Pixels, 0, len(runes)),
		layouts: cache.New[layoutKey, []Glyph](layoutCacheSize),
	}

	// The cell covers the union of all glyph boxes and the full line.
	cell := image.Rect(0, -fm.Ascent.Ceil(), 0, fm.Descent.Ceil())
	blank := make([]bool, len(runes))
	for i, r := range runes {
		b, _, ok := face.GlyphBounds(r)
		if !ok || b.Empty() {
			blank[i] = true
			continue
		}
		cell = cell.Union(image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil()))
	}
	a.cellWidth = cell.Dx() + 2*cellPadding
	a.cellHeight = cell.Dy() + 2*cellPadding
	a.origin = image.Pt(cellPadding-cell.Min.X, cellPadding-cell.Min.Y)

	dot := fixed.P(a.origin.X, a.origin.Y)
	for i, r := range runes {
		dst := image.NewRGBA(image.Rect(0, 0, a.cellWidth, a.cellHeight))
		if !blank[i] {
			dr, mask, maskp, _, ok := face.Glyph(dot, r)
			if ok {
				// Uniform white through the coverage mask is premultiplied white.
				xdraw.DrawMask(dst, dr, image.White, image.Point{}, mask, maskp, xdraw.Over)
			}
		}
		a.glyphs[ids[i]] = glyph{layer: len(a.layers), blank: blank[i]}
		a.layers = append(a.layers, resource.Pixels{Width: a.cellWidth, Height: a.cellHeight, Pix: dst.Pix})
	}
	return a, nil
}

// Source returns the font the atlas was rasterized from.
func (a *Atlas) Source() *Source { return a.source }

// Size returns the raster size in pixels.
func (a *Atlas) Size() float64 { return a.size }

// Metrics returns the vertical metrics at the raster size.
func (a *Atlas) Metrics() Metrics { return a.metrics }

// CellSize returns the size of one layer.
func (a *Atlas) CellSize() (width, height int) { return a.cellWidth, a.cellHeight }

// Len returns the number of glyphs, which is also the layer count.
func (a *Atlas) Len() int { return len(a.layers) }

// Layers returns the glyph layers in layer order.
func (a *Atlas) Layers() []resource.Pixels { return a.layers }

// Upload creates the texture array of the atlas.
func (a *Atlas) Upload(reg *resource.Registry) (*Font, error) {
	if reg == nil {
		return nil, errors.New("text: no registry to upload to")
	}
	tex, err := reg.CreateTextureArray(a.cellWidth, a.cellHeight, a.layers)
	if err != nil {
		return nil, err
	}
	return &Font{Atlas: a, texture: tex}, nil
}

// Font is an atlas uploaded to the device.
type Font struct {
	*Atlas
	texture resource.TextureArray
}

// Texture returns the glyph texture array.
func (f *Font) Texture() resource.TextureArray { return f.texture }

// Release drops the font's reference to its texture array.
func (f *Font) Release(reg *resource.Registry) error {
	return reg.Release(f.texture.Handle())
}

// LoadTask rasterizes src and uploads the result. It is two units of work.
func LoadTask(src *Source, size float64, charset string) load.Task[*Font] {
	return load.Sized(2, func(w *load.Worker) (*Font, error) {
		a, err := Rasterize(src, size, charset)
		if err != nil {
			return nil, err
		}
		w.Advance(1)
		return a.Upload(w.Registry())
	})
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
