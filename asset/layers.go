package asset

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/resource"
)

// Fit scales p to width x height with Catmull-Rom filtering. Pixels that
// already have the size are returned unchanged.
func Fit(p resource.Pixels, width, height int) resource.Pixels {
	if p.Width == width && p.Height == height {
		return p
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), Image(p), image.Rect(0, 0, p.Width, p.Height), xdraw.Src, nil)
	return resource.Pixels{Width: width, Height: height, Pix: dst.Pix}
}

// Split cuts a sprite sheet into cols x rows equal cells, row by row. The
// sheet size must be a multiple of the cell size.
func Split(sheet resource.Pixels, cols, rows int) ([]resource.Pixels, error) {
	if cols <= 0 || rows <= 0 || sheet.Width%cols != 0 || sheet.Height%rows != 0 {
		return nil, fmt.Errorf("asset: cannot split %dx%d into %dx%d cells", sheet.Width, sheet.Height, cols, rows)
	}
	cw, ch := sheet.Width/cols, sheet.Height/rows
	src := Image(sheet)
	cells := make([]resource.Pixels, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell := image.NewRGBA(image.Rect(0, 0, cw, ch))
			xdraw.Copy(cell, image.Point{}, src, image.Rect(x*cw, y*ch, (x+1)*cw, (y+1)*ch), xdraw.Src, nil)
			cells = append(cells, resource.Pixels{Width: cw, Height: ch, Pix: cell.Pix})
		}
	}
	return cells, nil
}

// DecodeFiles decodes paths in parallel, at most limit at a time (limit <= 0
// means no limit). Results keep the order of paths. The first failure
// cancels the remaining decodes.
//
// Decoding is the only work that leaves the calling goroutine; the pixels
// are handed back once all files are done.
func DecodeFiles(ctx context.Context, paths []string, limit int) ([]resource.Pixels, error) {
	out := make([]resource.Pixels, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := DecodeFile(path)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TextureArrayTask decodes paths and uploads them as the layers of one
// texture array of width x height. Images of another size are fitted. A zero
// size uses the size of the first image.
//
// The task is len(paths)+1 work units: one per decoded file and one for the
// upload.
func TextureArrayTask(paths []string, width, height int) load.Task[resource.TextureArray] {
	return load.Sized(len(paths)+1, func(w *load.Worker) (resource.TextureArray, error) {
		layers, err := DecodeFiles(w.Context(), paths, 0)
		if err != nil {
			return resource.TextureArray{}, err
		}
		w.Advance(len(paths))
		return upload(w, layers, width, height)
	})
}

// SheetTask decodes one sprite sheet and uploads its cells as layers.
func SheetTask(path string, cols, rows int) load.Task[resource.TextureArray] {
	return load.Sized(2, func(w *load.Worker) (resource.TextureArray, error) {
		sheet, err := DecodeFile(path)
		if err != nil {
			return resource.TextureArray{}, err
		}
		cells, err := Split(sheet, cols, rows)
		if err != nil {
			return resource.TextureArray{}, err
		}
		w.Advance(1)
		return upload(w, cells, 0, 0)
	})
}

func upload(w *load.Worker, layers []resource.Pixels, width, height int) (resource.TextureArray, error) {
	if len(layers) == 0 {
		return resource.TextureArray{}, fmt.Errorf("asset: no images")
	}
	if w.Registry() == nil {
		return resource.TextureArray{}, fmt.Errorf("asset: no registry to upload to")
	}
	if width == 0 || height == 0 {
		width, height = layers[0].Width, layers[0].Height
	}
	for i := range layers {
		layers[i] = Fit(layers[i], width, height)
	}
	return w.Registry().CreateTextureArray(width, height, layers)
}
