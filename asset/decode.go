package asset

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/ggame/resource"
)

var (
	// ErrUnknownFormat is returned for data no registered decoder accepts.
	ErrUnknownFormat = errors.New("asset: unknown image format")

	// ErrEmptyImage is returned for images without pixels.
	ErrEmptyImage = errors.New("asset: empty image")
)

// Decode reads an image in any supported format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) and returns its premultiplied RGBA8 pixels and the format name.
func Decode(r io.Reader) (resource.Pixels, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return resource.Pixels{}, "", ErrUnknownFormat
		}
		return resource.Pixels{}, "", fmt.Errorf("asset: decode: %w", err)
	}
	p, err := ToPixels(img)
	if err != nil {
		return resource.Pixels{}, format, err
	}
	return p, format, nil
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (resource.Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return resource.Pixels{}, fmt.Errorf("asset: %w", err)
	}
	defer f.Close()

	p, _, err := Decode(bufio.NewReader(f))
	if err != nil {
		return resource.Pixels{}, fmt.Errorf("%w (%s)", err, path)
	}
	return p, nil
}

// ToPixels converts any image to tightly packed premultiplied RGBA8.
func ToPixels(img image.Image) (resource.Pixels, error) {
	b := img.Bounds()
	if b.Empty() {
		return resource.Pixels{}, ErrEmptyImage
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	}
	return resource.Pixels{Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}, nil
}

// Image wraps pixels as an *image.RGBA sharing their buffer.
func Image(p resource.Pixels) *image.RGBA {
	return &image.RGBA{Pix: p.Pix, Stride: 4 * p.Width, Rect: image.Rect(0, 0, p.Width, p.Height)}
}
