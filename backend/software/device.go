package software

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
)

var (
	// ErrUnsupportedShader is returned for custom WGSL programs, which the
	// CPU rasterizer cannot execute.
	ErrUnsupportedShader = errors.New("software: custom shaders are not supported")

	// ErrUnknownID is returned for a device ID this device never issued.
	ErrUnknownID = errors.New("software: unknown id")

	// ErrNoFrame is returned for frame calls outside BeginFrame/Present.
	ErrNoFrame = errors.New("software: no frame in progress")
)

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func(cfg backend.Config) (gpucore.Device, error) {
		return New(WithSize(cfg.Width, cfg.Height)), nil
	})
}

type textureArray struct {
	layers []*image.RGBA
	// target is set for the color buffer of a render target.
	target gpucore.TargetID
}

// Device rasterizes instanced quads into image.RGBA buffers.
//
// Pixels are premultiplied RGBA8 like image.RGBA. Sampling is nearest
// neighbor. Device is not safe for concurrent use.
type Device struct {
	limits    gpucore.Limits
	surface   *image.RGBA
	onPresent func(*image.RGBA)

	nextID   uint64
	textures map[gpucore.TextureID]*textureArray
	shaders  map[gpucore.ShaderID]gpucore.BuiltinShader
	targets  map[gpucore.TargetID]*image.RGBA

	inFrame bool
	frames  int
	pixels  int
}

var _ gpucore.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithSize sets the initial surface size.
func WithSize(width, height int) Option {
	return func(d *Device) {
		if width > 0 && height > 0 {
			d.surface = image.NewRGBA(image.Rect(0, 0, width, height))
		}
	}
}

// WithLimits overrides the reported device limits.
func WithLimits(l gpucore.Limits) Option {
	return func(d *Device) { d.limits = l }
}

// WithPresentHook calls fn with the surface at every Present. The image is
// only valid during the call.
func WithPresentHook(fn func(*image.RGBA)) Option {
	return func(d *Device) { d.onPresent = fn }
}

// New returns a software device.
func New(opts ...Option) *Device {
	d := &Device{
		limits:   gpucore.DefaultLimits(),
		surface:  image.NewRGBA(image.Rectangle{}),
		textures: make(map[gpucore.TextureID]*textureArray),
		shaders:  make(map[gpucore.ShaderID]gpucore.BuiltinShader),
		targets:  make(map[gpucore.TargetID]*image.RGBA),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements gpucore.Device.
func (d *Device) Name() string { return backend.BackendSoftware }

// Limits implements gpucore.Device.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

// PixelsShaded returns the number of pixels written by draws so far.
func (d *Device) PixelsShaded() int { return d.pixels }

// Snapshot returns a copy of the surface.
func (d *Device) Snapshot() *image.RGBA {
	return clone(d.surface)
}

// TargetSnapshot returns a copy of an off-screen target, or nil.
func (d *Device) TargetSnapshot(id gpucore.TargetID) *image.RGBA {
	img, ok := d.targets[id]
	if !ok {
		return nil
	}
	return clone(img)
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	xdraw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// CreateTextureArray implements gpucore.Device.
func (d *Device) CreateTextureArray(desc *gpucore.TextureArrayDescriptor) (gpucore.TextureID, error) {
	want := desc.Width * desc.Height * gpucore.BytesPerPixel
	arr := &textureArray{layers: make([]*image.RGBA, len(desc.Layers))}
	for i, pix := range desc.Layers {
		if len(pix) != want {
			return gpucore.InvalidID, fmt.Errorf("software: layer %d has %d bytes, want %d", i, len(pix), want)
		}
		img := image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
		copy(img.Pix, pix)
		arr.layers[i] = img
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = arr
	return id, nil
}

// DestroyTextureArray implements gpucore.Device.
func (d *Device) DestroyTextureArray(id gpucore.TextureID) {
	delete(d.textures, id)
}

// CreateShader implements gpucore.Device.
func (d *Device) CreateShader(desc *gpucore.ShaderDescriptor) (gpucore.ShaderID, error) {
	if desc.Builtin == gpucore.ShaderCustom {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrUnsupportedShader, desc.Label)
	}
	id := gpucore.ShaderID(d.id())
	d.shaders[id] = desc.Builtin
	return id, nil
}

// DestroyShader implements gpucore.Device.
func (d *Device) DestroyShader(id gpucore.ShaderID) {
	delete(d.shaders, id)
}

// CreateRenderTarget implements gpucore.Device. Depth buffers are accepted
// and ignored: quads are drawn in submission order.
func (d *Device) CreateRenderTarget(desc *gpucore.RenderTargetDescriptor) (gpucore.TargetID, gpucore.TextureID, error) {
	img := image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	id := gpucore.TargetID(d.id())
	tex := gpucore.TextureID(d.id())
	d.targets[id] = img
	d.textures[tex] = &textureArray{layers: []*image.RGBA{img}, target: id}
	return id, tex, nil
}

// DestroyRenderTarget implements gpucore.Device.
func (d *Device) DestroyRenderTarget(id gpucore.TargetID) {
	delete(d.targets, id)
	for tex, arr := range d.textures {
		if arr.target == id {
			delete(d.textures, tex)
		}
	}
}

// BeginFrame implements gpucore.Device. The surface keeps its contents
// unless its size changes.
func (d *Device) BeginFrame(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("software: surface size %dx%d", width, height)
	}
	if b := d.surface.Bounds(); b.Dx() != width || b.Dy() != height {
		d.surface = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	d.inFrame = true
	return nil
}

func (d *Device) target(id gpucore.TargetID) (*image.RGBA, error) {
	if id == gpucore.Surface {
		return d.surface, nil
	}
	img, ok := d.targets[id]
	if !ok {
		return nil, fmt.Errorf("%w: render target %d", ErrUnknownID, id)
	}
	return img, nil
}

// Clear implements gpucore.Device.
func (d *Device) Clear(target gpucore.TargetID, color graphics.RGBA) error {
	if !d.inFrame {
		return ErrNoFrame
	}
	img, err := d.target(target)
	if err != nil {
		return err
	}
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA()}, image.Point{}, xdraw.Src)
	return nil
}

// Draw implements gpucore.Device.
func (d *Device) Draw(call *gpucore.DrawCall) error {
	if !d.inFrame {
		return ErrNoFrame
	}
	dst, err := d.target(call.Target)
	if err != nil {
		return err
	}
	builtin, ok := d.shaders[call.Shader]
	if !ok {
		return fmt.Errorf("%w: shader %d", ErrUnknownID, call.Shader)
	}
	arr, ok := d.textures[call.Texture]
	if !ok {
		return fmt.Errorf("%w: texture array %d", ErrUnknownID, call.Texture)
	}
	for i := range call.Instances {
		in := &call.Instances[i]
		if int(in.Layer) >= len(arr.layers) {
			return fmt.Errorf("software: instance %d layer %d of %d", i, in.Layer, len(arr.layers))
		}
		var src *image.RGBA
		if builtin == gpucore.ShaderSprite {
			src = arr.layers[in.Layer]
		}
		d.pixels += rasterize(dst, src, in, call.Blend)
	}
	return nil
}

// Present implements gpucore.Device.
func (d *Device) Present() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	d.frames++
	if d.onPresent != nil {
		d.onPresent(d.surface)
	}
	return nil
}

// Destroy implements gpucore.Device.
func (d *Device) Destroy() {
	clear(d.textures)
	clear(d.shaders)
	clear(d.targets)
}

// rasterize draws one instance into dst and returns the pixels covered.
// A nil src fills with the tint.
func rasterize(dst, src *image.RGBA, in *gpucore.Instance, blend graphics.BlendMode) int {
	m := graphics.Matrix{
		A: float64(in.Transform[0]), B: float64(in.Transform[1]), C: float64(in.Transform[2]),
		D: float64(in.Transform[3]), E: float64(in.Transform[4]), F: float64(in.Transform[5]),
	}
	inv, ok := m.Invert()
	if !ok {
		return 0
	}

	// Bounding box of the transformed unit square, clipped to dst.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4]graphics.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}} {
		q := m.Apply(p)
		minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
		minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	box = box.Intersect(dst.Bounds())

	u0, v0, u1, v1 := float64(in.UV[0]), float64(in.UV[1]), float64(in.UV[2]), float64(in.UV[3])
	n := 0
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			p := inv.Apply(graphics.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if p.X < 0 || p.X >= 1 || p.Y < 0 || p.Y >= 1 {
				continue
			}
			color := in.Tint
			if src != nil {
				texel := sample(src, u0+p.X*(u1-u0), v0+p.Y*(v1-v0))
				for c := range color {
					color[c] *= texel[c]
				}
			}
			off := dst.PixOffset(x, y)
			px := dst.Pix[off : off+4 : off+4]
			out := blend.Blend(color, [4]float32{
				float32(px[0]) / 255, float32(px[1]) / 255, float32(px[2]) / 255, float32(px[3]) / 255,
			})
			for c := range out {
				px[c] = to8(out[c])
			}
			n++
		}
	}
	return n
}

// sample reads the nearest texel at normalized coordinates, clamped to the
// edges.
func sample(img *image.RGBA, u, v float64) [4]float32 {
	b := img.Bounds()
	x := clampInt(int(math.Floor(u*float64(b.Dx()))), 0, b.Dx()-1)
	y := clampInt(int(math.Floor(v*float64(b.Dy()))), 0, b.Dy()-1)
	off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := img.Pix[off : off+4 : off+4]
	return [4]float32{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
