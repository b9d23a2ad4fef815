package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/batch"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/render"
	"github.com/gogpu/ggame/resource"
)

func quad(x, y, w, h float32, tint [4]float32) gpucore.Instance {
	return gpucore.Instance{
		Transform: [6]float32{w, 0, x, 0, h, y},
		UV:        [4]float32{0, 0, 1, 1},
		Tint:      tint,
	}
}

func mustShader(t *testing.T, d *Device, b gpucore.BuiltinShader) gpucore.ShaderID {
	t.Helper()
	id, err := d.CreateShader(&gpucore.ShaderDescriptor{Builtin: b})
	if err != nil {
		t.Fatalf("CreateShader() error = %v", err)
	}
	return id
}

func mustTexture(t *testing.T, d *Device, w, h int, layers ...[]byte) gpucore.TextureID {
	t.Helper()
	id, err := d.CreateTextureArray(&gpucore.TextureArrayDescriptor{Width: w, Height: h, Layers: layers})
	if err != nil {
		t.Fatalf("CreateTextureArray() error = %v", err)
	}
	return id
}

func TestName(t *testing.T) {
	d := New()
	if d.Name() != "software" {
		t.Errorf("Name() = %q, want %q", d.Name(), "software")
	}
	if !backend.IsRegistered(backend.BackendSoftware) {
		t.Error("software backend not registered")
	}
}

func TestClearAndSolidDraw(t *testing.T) {
	d := New()
	solid := mustShader(t, d, gpucore.ShaderSolid)
	tex := mustTexture(t, d, 1, 1, []byte{0, 0, 0, 0})

	if err := d.BeginFrame(8, 8); err != nil {
		t.Fatal(err)
	}
	if err := d.Clear(gpucore.Surface, graphics.Blue); err != nil {
		t.Fatal(err)
	}
	err := d.Draw(&gpucore.DrawCall{
		Target: gpucore.Surface, TargetWidth: 8, TargetHeight: 8,
		Shader: solid, Texture: tex,
		Instances: []gpucore.Instance{quad(2, 2, 4, 4, [4]float32{1, 0, 0, 1})},
	})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if err := d.Present(); err != nil {
		t.Fatal(err)
	}

	img := d.Snapshot()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{2, 2, color.RGBA{255, 0, 0, 255}},
		{5, 5, color.RGBA{255, 0, 0, 255}},
		{6, 6, color.RGBA{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if d.PixelsShaded() != 16 {
		t.Errorf("PixelsShaded() = %d, want 16", d.PixelsShaded())
	}
}

func TestSpriteSamplesLayerAndTint(t *testing.T) {
	d := New()
	sprite := mustShader(t, d, gpucore.ShaderSprite)
	// Two 2x1 layers: layer 0 white|black, layer 1 green|green.
	tex := mustTexture(t, d, 2, 1,
		[]byte{255, 255, 255, 255, 0, 0, 0, 255},
		[]byte{0, 255, 0, 255, 0, 255, 0, 255},
	)
	_ = d.BeginFrame(4, 2)
	in0 := quad(0, 0, 4, 1, [4]float32{1, 1, 1, 1})
	in1 := quad(0, 1, 4, 1, [4]float32{0.5, 0.5, 0.5, 0.5})
	in1.Layer = 1
	if err := d.Draw(&gpucore.DrawCall{Shader: sprite, Texture: tex, Instances: []gpucore.Instance{in0, in1}}); err != nil {
		t.Fatal(err)
	}
	_ = d.Present()

	img := d.Snapshot()
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("left texel = %v, want white", got)
	}
	if got := img.RGBAAt(3, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("right texel = %v, want black", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{0, 128, 0, 128}) {
		t.Errorf("tinted layer 1 = %v, want half green", got)
	}
}

func TestBlendAdd(t *testing.T) {
	d := New()
	solid := mustShader(t, d, gpucore.ShaderSolid)
	tex := mustTexture(t, d, 1, 1, []byte{0, 0, 0, 0})
	_ = d.BeginFrame(1, 1)
	_ = d.Clear(gpucore.Surface, graphics.RGB(0.2, 0, 0))
	call := &gpucore.DrawCall{
		Shader: solid, Texture: tex, Blend: graphics.BlendAdd,
		Instances: []gpucore.Instance{quad(0, 0, 1, 1, [4]float32{0.4, 0, 0, 0})},
	}
	_ = d.Draw(call)
	_ = d.Present()
	if got := d.Snapshot().RGBAAt(0, 0).R; got != 153 {
		t.Errorf("red = %d, want 153", got)
	}
}

func TestErrors(t *testing.T) {
	d := New()
	if _, err := d.CreateShader(&gpucore.ShaderDescriptor{Label: "x", WGSL: "fn vs_main(){} fn fs_main(){}"}); !errors.Is(err, ErrUnsupportedShader) {
		t.Errorf("custom shader = %v, want ErrUnsupportedShader", err)
	}
	if err := d.Clear(gpucore.Surface, graphics.Black); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Clear outside frame = %v, want ErrNoFrame", err)
	}
	_ = d.BeginFrame(1, 1)
	if err := d.Clear(99, graphics.Black); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Clear(unknown) = %v, want ErrUnknownID", err)
	}
	if err := d.Draw(&gpucore.DrawCall{Shader: 42}); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Draw(unknown shader) = %v, want ErrUnknownID", err)
	}
}

// TestExecutorCanvasComposition runs the full registry, batch and executor
// path on the software device.
func TestExecutorCanvasComposition(t *testing.T) {
	d := New()
	reg := resource.NewRegistry(d)
	exec := render.NewExecutor(d, reg)
	exec.SetSurfaceSize(8, 8)

	sprite, err := reg.CreateShader(gpucore.ShaderDescriptor{Builtin: gpucore.ShaderSprite})
	if err != nil {
		t.Fatal(err)
	}
	white, err := reg.CreateTextureArray(1, 1, []resource.Pixels{resource.SolidPixels(1, 1, graphics.White)})
	if err != nil {
		t.Fatal(err)
	}
	canvas, err := reg.CreateRenderTarget(4, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	info, _ := reg.ResolveRenderTarget(canvas)

	b := batch.NewBuilder()
	_ = b.Clear(canvas, graphics.Transparent)
	_ = b.Draw(batch.Command{
		Target: canvas, Shader: sprite, Source: batch.FullSlot(white, 0),
		Transform: graphics.Scale(2, 4), Tint: graphics.Green,
	})
	_ = b.Clear(resource.RenderTarget{}, graphics.Black)
	_ = b.Draw(batch.Command{
		Shader: sprite, Source: batch.FullSlot(info.Texture, 0),
		Transform: graphics.Scale(8, 8), Tint: graphics.White,
	})
	batches, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := exec.Submit(batches); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	img := d.Snapshot()
	if got := img.RGBAAt(1, 1); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("left half = %v, want green from canvas", got)
	}
	if got := img.RGBAAt(6, 6); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("right half = %v, want black", got)
	}
	if d.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", d.Frames())
	}

	reg.ReleaseAll()
	if len(d.textures) != 0 || len(d.shaders) != 0 || len(d.targets) != 0 {
		t.Errorf("leaked %d textures, %d shaders, %d targets", len(d.textures), len(d.shaders), len(d.targets))
	}
}

func TestPresentHook(t *testing.T) {
	var seen int
	d := New(WithSize(2, 2), WithPresentHook(func(img *image.RGBA) { seen = img.Bounds().Dx() }))
	_ = d.BeginFrame(3, 3)
	_ = d.Present()
	if seen != 3 {
		t.Errorf("hook saw width %d, want 3", seen)
	}
}
