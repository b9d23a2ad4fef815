package text

import (
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/internal/cache"
)

// HarfbuzzShaper is not safe for concurrent use; each Shape call borrows one.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Glyph is one positioned glyph cell. Rect is the destination of the whole
// layer in pixels, relative to the top-left corner of the text block.
type Glyph struct {
	Layer int
	Rect  graphics.Rect
}

// Layout shapes s and places its glyphs at size pixels. Lines are split on
// '\n' and advance by the line height. Glyphs missing from the atlas and
// blank glyphs such as spaces take up room but produce no cell.
//
// A size <= 0 lays out at the raster size. Other sizes scale the cells, so
// text is sharpest at the raster size.
//
// Results are cached per string and size; the returned slice must not be
// modified. Layout is not safe for concurrent use.
func (a *Atlas) Layout(s string, size float64) []Glyph {
	key := layoutKey{text: s, size: a.scale(size)}
	return a.layouts.GetOrCreate(key, func() []Glyph { return a.layout(s, key.size) })
}

// LayoutCacheStats reports the layout cache usage.
func (a *Atlas) LayoutCacheStats() cache.Stats { return a.layouts.Stats() }

func (a *Atlas) layout(s string, scale float64) []Glyph {
	cw, ch := float64(a.cellWidth)*scale, float64(a.cellHeight)*scale
	ox, oy := float64(a.origin.X)*scale, float64(a.origin.Y)*scale

	var out []Glyph
	for i, line := range strings.Split(norm.NFC.String(s), "\n") {
		baseline := a.metrics.Ascent*scale + float64(i)*a.metrics.LineHeight*scale
		a.shapeLine(line, func(id sfnt.GlyphIndex, x, y float64) {
			g, ok := a.glyphs[id]
			if !ok || g.blank {
				return
			}
			out = append(out, Glyph{
				Layer: g.layer,
				Rect:  graphics.R(x*scale-ox, baseline+y*scale-oy, cw, ch),
			})
		})
	}
	return out
}

// Measure returns the size of the laid out text block: the widest line and
// the line height times the line count.
func (a *Atlas) Measure(s string, size float64) graphics.Point {
	scale := a.scale(size)
	lines := strings.Split(norm.NFC.String(s), "\n")
	var width float64
	for _, line := range lines {
		width = max(width, a.shapeLine(line, nil))
	}
	return graphics.Pt(width*scale, float64(len(lines))*a.metrics.LineHeight*scale)
}

func (a *Atlas) scale(size float64) float64 {
	if size <= 0 {
		return 1
	}
	return size / a.size
}

// shapeLine shapes one line at the raster size, calls visit with each glyph
// pen position (y down, relative to the baseline) and returns the advance.
func (a *Atlas) shapeLine(line string, visit func(id sfnt.GlyphIndex, x, y float64)) float64 {
	runes := []rune(line)
	if len(runes) == 0 {
		return 0
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(a.source.shaping),
		Size:      floatToFixed(a.size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	var x float64
	for _, g := range output.Glyphs {
		if visit != nil {
			// go-text offsets point up.
			visit(sfnt.GlyphIndex(g.GlyphID), x+fixedToFloat(g.XOffset), -fixedToFloat(g.YOffset)) //nolint:gosec // glyph ids fit in 16 bits
		}
		x += fixedToFloat(g.Advance)
	}
	return x
}

// detectScript returns the script of the first non-space rune. Mixed
// script lines are shaped with that single script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
