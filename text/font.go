package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/flopp/go-findfont"
	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidSize is returned for a non-positive raster size.
	ErrInvalidSize = errors.New("text: invalid font size")

	// ErrNoGlyphs is returned when a charset yields no drawable glyph.
	ErrNoGlyphs = errors.New("text: no glyphs to rasterize")
)

// Source is a parsed font file. It is read-only and can be shared by any
// number of fonts rasterized from it.
//
// The outlines are parsed twice: once by golang.org/x/image for
// rasterization and metrics, once by go-text/typesetting for shaping. Both
// parsers address glyphs by the same font glyph index.
type Source struct {
	name    string
	data    []byte
	outline *opentype.Font
	shaping *gotext.Font
}

// Parse parses TrueType or OpenType font data.
func Parse(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	outline, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	name, err := outline.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = "unknown"
	}
	return &Source{name: name, data: data, outline: outline, shaping: face.Font}, nil
}

// ParseFile parses the font file at path.
func ParseFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return src, nil
}

// System locates an installed font by file name, such as "DejaVuSans.ttf",
// in the platform font directories and parses it.
func System(name string) (*Source, error) {
	path, err := findfont.Find(name)
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	return ParseFile(path)
}

// GoRegular returns the Go Regular font bundled with golang.org/x/image.
func GoRegular() *Source {
	src, err := Parse(goregular.TTF)
	if err != nil {
		panic("text: bundled font: " + err.Error())
	}
	return src
}

// Name returns the font family name.
func (s *Source) Name() string { return s.name }

// glyphIndex returns the glyph index of r, or 0 (.notdef) if the font has
// no glyph for it.
func (s *Source) glyphIndex(buf *sfnt.Buffer, r rune) sfnt.GlyphIndex {
	idx, err := s.outline.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	return idx
}
