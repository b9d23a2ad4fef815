//go:build ebiten

package ebiten

import (
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

var (
	// ErrUnsupportedShader is returned for custom WGSL programs.
	ErrUnsupportedShader = errors.New("ebiten: custom shaders are not supported")

	// ErrUnknownID is returned for a device ID this device never issued.
	ErrUnknownID = errors.New("ebiten: unknown id")

	// ErrNoFrame is returned for frame calls outside BeginFrame/Present.
	ErrNoFrame = errors.New("ebiten: no frame in progress")
)

func init() {
	backend.Register(backend.BackendEbiten, func(cfg backend.Config) (gpucore.Device, error) {
		return New(cfg.Width, cfg.Height), nil
	})
}

type textureArray struct {
	layers []*ebiten.Image
	width  int
	height int
	target gpucore.TargetID
}

// Device draws instanced quads with ebiten's batched DrawImage.
//
// Each instance becomes one DrawImage call; ebiten merges consecutive calls
// with the same source image and composite mode into one GL draw. The
// surface is the screen handed over by the Host, or an offscreen image when
// the device runs without one.
type Device struct {
	limits gpucore.Limits
	screen *ebiten.Image
	// offscreen is used until a host installs its screen.
	offscreen *ebiten.Image
	white     *ebiten.Image

	nextID   uint64
	textures map[gpucore.TextureID]*textureArray
	shaders  map[gpucore.ShaderID]gpucore.BuiltinShader
	targets  map[gpucore.TargetID]*ebiten.Image

	inFrame bool
	frames  int
}

var _ gpucore.Device = (*Device)(nil)

// New returns a device with an offscreen surface of the given size.
func New(width, height int) *Device {
	white := ebiten.NewImage(1, 1)
	white.ReplacePixels([]byte{0xff, 0xff, 0xff, 0xff})
	d := &Device{
		limits:   gpucore.DefaultLimits(),
		white:    white,
		textures: make(map[gpucore.TextureID]*textureArray),
		shaders:  make(map[gpucore.ShaderID]gpucore.BuiltinShader),
		targets:  make(map[gpucore.TargetID]*ebiten.Image),
	}
	if width > 0 && height > 0 {
		d.offscreen = ebiten.NewImage(width, height)
	}
	return d
}

// SetScreen makes screen the surface of the next frame.
func (d *Device) SetScreen(screen *ebiten.Image) { d.screen = screen }

// Name implements gpucore.Device.
func (d *Device) Name() string { return backend.BackendEbiten }

// Limits implements gpucore.Device.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// CreateTextureArray implements gpucore.Device.
func (d *Device) CreateTextureArray(desc *gpucore.TextureArrayDescriptor) (gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 || len(desc.Layers) == 0 {
		return gpucore.InvalidID, fmt.Errorf("ebiten: invalid texture array %dx%dx%d", desc.Width, desc.Height, len(desc.Layers))
	}
	want := desc.Width * desc.Height * gpucore.BytesPerPixel
	arr := &textureArray{width: desc.Width, height: desc.Height}
	for i, pix := range desc.Layers {
		if len(pix) != want {
			return gpucore.InvalidID, fmt.Errorf("ebiten: layer %d has %d bytes, want %d", i, len(pix), want)
		}
		img := ebiten.NewImage(desc.Width, desc.Height)
		img.ReplacePixels(pix)
		arr.layers = append(arr.layers, img)
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = arr
	return id, nil
}

// DestroyTextureArray implements gpucore.Device.
func (d *Device) DestroyTextureArray(id gpucore.TextureID) {
	arr, ok := d.textures[id]
	if !ok || arr.target != 0 {
		return
	}
	for _, img := range arr.layers {
		img.Dispose()
	}
	delete(d.textures, id)
}

// CreateShader implements gpucore.Device.
func (d *Device) CreateShader(desc *gpucore.ShaderDescriptor) (gpucore.ShaderID, error) {
	switch desc.Builtin {
	case gpucore.ShaderSprite, gpucore.ShaderSolid:
	case gpucore.ShaderCustom:
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrUnsupportedShader, desc.Label)
	default:
		return gpucore.InvalidID, fmt.Errorf("ebiten: unknown builtin shader %d", desc.Builtin)
	}
	id := gpucore.ShaderID(d.id())
	d.shaders[id] = desc.Builtin
	return id, nil
}

// DestroyShader implements gpucore.Device.
func (d *Device) DestroyShader(id gpucore.ShaderID) { delete(d.shaders, id) }

// CreateRenderTarget implements gpucore.Device. Depth is ignored; ebiten
// images have no depth buffer.
func (d *Device) CreateRenderTarget(desc *gpucore.RenderTargetDescriptor) (gpucore.TargetID, gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, 0, fmt.Errorf("ebiten: invalid render target %dx%d", desc.Width, desc.Height)
	}
	img := ebiten.NewImage(desc.Width, desc.Height)
	target := gpucore.TargetID(d.id())
	tex := gpucore.TextureID(d.id())
	d.targets[target] = img
	d.textures[tex] = &textureArray{layers: []*ebiten.Image{img}, width: desc.Width, height: desc.Height, target: target}
	return target, tex, nil
}

// DestroyRenderTarget implements gpucore.Device.
func (d *Device) DestroyRenderTarget(id gpucore.TargetID) {
	img, ok := d.targets[id]
	if !ok {
		return
	}
	for tex, arr := range d.textures {
		if arr.target == id {
			delete(d.textures, tex)
		}
	}
	img.Dispose()
	delete(d.targets, id)
}

func (d *Device) surface() *ebiten.Image {
	if d.screen != nil {
		return d.screen
	}
	return d.offscreen
}

// BeginFrame implements gpucore.Device. The offscreen surface is resized to
// the frame size; a host screen keeps the size ebiten laid out.
func (d *Device) BeginFrame(width, height int) error {
	if d.screen == nil {
		if d.offscreen == nil || d.offscreen.Bounds().Dx() != width || d.offscreen.Bounds().Dy() != height {
			if d.offscreen != nil {
				d.offscreen.Dispose()
			}
			d.offscreen = ebiten.NewImage(width, height)
		}
	}
	d.inFrame = true
	return nil
}

func (d *Device) target(id gpucore.TargetID) (*ebiten.Image, error) {
	if !d.inFrame {
		return nil, ErrNoFrame
	}
	if id == gpucore.Surface {
		return d.surface(), nil
	}
	img, ok := d.targets[id]
	if !ok {
		return nil, fmt.Errorf("%w: target %d", ErrUnknownID, id)
	}
	return img, nil
}

// Clear implements gpucore.Device.
func (d *Device) Clear(target gpucore.TargetID, color graphics.RGBA) error {
	img, err := d.target(target)
	if err != nil {
		return err
	}
	img.Fill(color.NRGBA())
	return nil
}

// Draw implements gpucore.Device.
func (d *Device) Draw(call *gpucore.DrawCall) error {
	dst, err := d.target(call.Target)
	if err != nil {
		return err
	}
	shader, ok := d.shaders[call.Shader]
	if !ok {
		return fmt.Errorf("%w: shader %d", ErrUnknownID, call.Shader)
	}
	arr, ok := d.textures[call.Texture]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownID, call.Texture)
	}

	mode := compositeMode(call.Blend)
	for i := range call.Instances {
		in := &call.Instances[i]
		src, sw, sh := d.white, 1.0, 1.0
		if shader == gpucore.ShaderSprite {
			if int(in.Layer) >= len(arr.layers) {
				continue
			}
			r := sourceRect(in.UV, arr.width, arr.height)
			if r.Empty() {
				continue
			}
			src = arr.layers[in.Layer].SubImage(r).(*ebiten.Image)
			sw, sh = float64(r.Dx()), float64(r.Dy())
		}

		op := &ebiten.DrawImageOptions{CompositeMode: mode, Filter: ebiten.FilterNearest}
		op.GeoM.Scale(1/sw, 1/sh)
		op.GeoM.Concat(geoM(in.Transform))
		if !tint(&op.ColorM, in.Tint) {
			continue
		}
		dst.DrawImage(src, op)
	}
	return nil
}

// Present implements gpucore.Device. Ebiten shows the screen after the
// host's Draw returns.
func (d *Device) Present() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	d.frames++
	return nil
}

// Destroy implements gpucore.Device.
func (d *Device) Destroy() {
	for id := range d.targets {
		d.DestroyRenderTarget(id)
	}
	for id := range d.textures {
		d.DestroyTextureArray(id)
	}
	if d.offscreen != nil {
		d.offscreen.Dispose()
		d.offscreen = nil
	}
	d.white.Dispose()
}

func geoM(t [6]float32) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, float64(t[0]))
	g.SetElement(0, 1, float64(t[1]))
	g.SetElement(0, 2, float64(t[2]))
	g.SetElement(1, 0, float64(t[3]))
	g.SetElement(1, 1, float64(t[4]))
	g.SetElement(1, 2, float64(t[5]))
	return g
}

// tint scales by a premultiplied tint. ColorM works on straight alpha, so
// the color channels are divided back out. It reports false for a fully
// transparent tint.
func tint(m *ebiten.ColorM, c [4]float32) bool {
	a := float64(c[3])
	if a <= 0 {
		return false
	}
	m.Scale(float64(c[0])/a, float64(c[1])/a, float64(c[2])/a, a)
	return true
}

func sourceRect(uv [4]float32, w, h int) image.Rectangle {
	return image.Rect(
		int(float64(uv[0])*float64(w)+0.5), int(float64(uv[1])*float64(h)+0.5),
		int(float64(uv[2])*float64(w)+0.5), int(float64(uv[3])*float64(h)+0.5),
	).Canon()
}

func compositeMode(b graphics.BlendMode) ebiten.CompositeMode {
	switch b {
	case graphics.BlendAdd:
		return ebiten.CompositeModeLighter
	case graphics.BlendMultiply:
		return ebiten.CompositeModeMultiply
	case graphics.BlendReplace:
		return ebiten.CompositeModeCopy
	default:
		return ebiten.CompositeModeSourceOver
	}
}
