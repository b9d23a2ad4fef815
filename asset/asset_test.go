package asset

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/recording"
	"github.com/gogpu/ggame/resource"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodePremultiplies(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(2, 1, color.NRGBA{R: 255, A: 128})); err != nil {
		t.Fatal(err)
	}
	p, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if p.Width != 2 || p.Height != 1 || len(p.Pix) != 8 {
		t.Fatalf("Decode() = %dx%d with %d bytes", p.Width, p.Height, len(p.Pix))
	}
	if p.Pix[0] != 128 || p.Pix[3] != 128 {
		t.Errorf("pixel = %v, want premultiplied red 128/128", p.Pix[:4])
	}
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, solidImage(3, 2, color.NRGBA{G: 255, A: 255})); err != nil {
		t.Fatal(err)
	}
	p, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "bmp" || p.Width != 3 || p.Height != 2 {
		t.Errorf("Decode() = %s %dx%d, want bmp 3x2", format, p.Width, p.Height)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode() error = %v, want ErrUnknownFormat", err)
	}
}

func TestToPixelsSubImage(t *testing.T) {
	img := solidImage(4, 4, color.White)
	sub := img.SubImage(image.Rect(1, 1, 3, 4))
	p, err := ToPixels(sub)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 2 || p.Height != 3 || len(p.Pix) != 2*3*4 {
		t.Errorf("ToPixels(sub) = %dx%d with %d bytes", p.Width, p.Height, len(p.Pix))
	}
	if _, err := ToPixels(image.NewRGBA(image.Rectangle{})); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("ToPixels(empty) error = %v, want ErrEmptyImage", err)
	}
}

func TestFit(t *testing.T) {
	p, _ := ToPixels(solidImage(4, 4, color.White))
	if got := Fit(p, 4, 4); &got.Pix[0] != &p.Pix[0] {
		t.Error("Fit to the same size should not copy")
	}
	got := Fit(p, 2, 8)
	if got.Width != 2 || got.Height != 8 || len(got.Pix) != 2*8*4 {
		t.Fatalf("Fit() = %dx%d with %d bytes", got.Width, got.Height, len(got.Pix))
	}
	if got.Pix[3] != 255 {
		t.Errorf("alpha = %d, want 255", got.Pix[3])
	}
}

func TestSplit(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 4, 2))
	sheet.Set(2, 0, color.RGBA{R: 255, A: 255})
	p, _ := ToPixels(sheet)

	cells, err := Split(p, 2, 1)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(cells) != 2 || cells[0].Width != 2 || cells[0].Height != 2 {
		t.Fatalf("Split() = %d cells", len(cells))
	}
	if cells[1].Pix[0] != 255 || cells[0].Pix[0] != 0 {
		t.Error("red pixel not in the second cell")
	}
	if _, err := Split(p, 3, 1); err == nil {
		t.Error("Split(3 cols) of width 4 should fail")
	}
}

func TestDecodeFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", solidImage(1, 1, color.White)),
		writePNG(t, dir, "b.png", solidImage(2, 2, color.White)),
		writePNG(t, dir, "c.png", solidImage(3, 3, color.White)),
	}
	got, err := DecodeFiles(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("DecodeFiles() error = %v", err)
	}
	for i, p := range got {
		if p.Width != i+1 {
			t.Errorf("result %d width = %d, want %d", i, p.Width, i+1)
		}
	}

	_, err = DecodeFiles(context.Background(), append(paths, filepath.Join(dir, "missing.png")), 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DecodeFiles(missing) error = %v, want ErrNotExist", err)
	}
}

func TestTextureArrayTask(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", solidImage(8, 8, color.White)),
		writePNG(t, dir, "b.png", solidImage(4, 4, color.Black)),
	}
	task := TextureArrayTask(paths, 0, 0)
	if task.Total() != 3 {
		t.Errorf("Total() = %d, want 3", task.Total())
	}

	reg := resource.NewRegistry(recording.New(nil))
	var last load.Progress
	tex, err := task.Run(context.Background(), reg, func(p load.Progress) { last = p })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	info, err := reg.ResolveTextureArray(tex)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 8 || info.Height != 8 || info.Layers != 2 {
		t.Errorf("texture = %dx%dx%d, want 8x8x2", info.Width, info.Height, info.Layers)
	}
	if last.Percentage() != 100 {
		t.Errorf("final progress = %v%%, want 100", last.Percentage())
	}
}

func TestTextureArrayTaskFailure(t *testing.T) {
	task := load.Stage("sprites", TextureArrayTask([]string{"/nonexistent/x.png"}, 1, 1))
	_, err := task.Run(context.Background(), resource.NewRegistry(recording.New(nil)), nil)
	var le *load.Error
	if !errors.As(err, &le) || le.Stage != "sprites" {
		t.Errorf("Run() error = %v, want load error in stage sprites", err)
	}
}

func TestSheetTask(t *testing.T) {
	path := writePNG(t, t.TempDir(), "sheet.png", solidImage(6, 4, color.White))
	reg := resource.NewRegistry(recording.New(nil))
	tex, err := SheetTask(path, 3, 2).Run(context.Background(), reg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	info, _ := reg.ResolveTextureArray(tex)
	if info.Width != 2 || info.Height != 2 || info.Layers != 6 {
		t.Errorf("sheet texture = %dx%dx%d, want 2x2x6", info.Width, info.Height, info.Layers)
	}
}
