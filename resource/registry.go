package resource

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/internal/logging"
)

// Registry errors.
var (
	// ErrStaleHandle is returned for a handle whose resource was released.
	ErrStaleHandle = errors.New("resource: stale handle")

	// ErrForeignHandle is returned for a handle issued by another registry.
	ErrForeignHandle = errors.New("resource: handle from another registry")

	// ErrInvalidHandle is returned for the zero handle or a handle of the
	// wrong kind.
	ErrInvalidHandle = errors.New("resource: invalid handle")

	// ErrDimensionMismatch is returned when texture array layers differ in
	// size from the array.
	ErrDimensionMismatch = errors.New("resource: dimension mismatch")

	// ErrInvalidPixels is returned for empty layer lists, non-positive sizes
	// and pixel slices of the wrong length.
	ErrInvalidPixels = errors.New("resource: invalid pixels")

	// ErrInvalidShader is returned for a shader descriptor that cannot work.
	ErrInvalidShader = errors.New("resource: invalid shader")

	// ErrLimitExceeded is returned when a request is beyond device limits.
	ErrLimitExceeded = errors.New("resource: device limit exceeded")
)

// TextureArrayInfo describes a live texture array.
type TextureArrayInfo struct {
	ID     gpucore.TextureID
	Width  int
	Height int
	Layers int
	// Owner is set when the array is the color buffer of a render target.
	Owner RenderTarget
}

// ShaderInfo describes a live shader program.
type ShaderInfo struct {
	ID      gpucore.ShaderID
	Label   string
	Builtin gpucore.BuiltinShader
}

// RenderTargetInfo describes a live off-screen target.
type RenderTargetInfo struct {
	ID      gpucore.TargetID
	Width   int
	Height  int
	Depth   bool
	Texture TextureArray
}

type entry struct {
	generation uint32
	live       bool
	kind       Kind
	refs       int
	seq        uint64

	texture TextureArrayInfo
	shader  ShaderInfo
	target  RenderTargetInfo
}

var registryIDs atomic.Uint32

// Registry owns all GPU resources of an engine and hands out
// generation-checked handles to them.
//
// A Registry is not safe for concurrent use. All calls happen on the
// goroutine that drives the engine.
type Registry struct {
	id     uint32
	device gpucore.Device

	entries []entry
	free    []uint32
	seq     uint64
	live    int
}

// NewRegistry returns an empty registry creating resources on device.
func NewRegistry(device gpucore.Device) *Registry {
	return &Registry{
		id:     registryIDs.Add(1),
		device: device,
	}
}

// Len returns the number of live resources, including the color textures
// of render targets.
func (r *Registry) Len() int { return r.live }

// CreateTextureArray uploads layers as one texture array of width x height
// texels per layer.
func (r *Registry) CreateTextureArray(width, height int, layers []Pixels) (TextureArray, error) {
	if width <= 0 || height <= 0 {
		return TextureArray{}, fmt.Errorf("%w: size %dx%d", ErrInvalidPixels, width, height)
	}
	if len(layers) == 0 {
		return TextureArray{}, fmt.Errorf("%w: no layers", ErrInvalidPixels)
	}
	limits := r.device.Limits()
	if width > limits.MaxTextureSize || height > limits.MaxTextureSize {
		return TextureArray{}, fmt.Errorf("%w: size %dx%d over %d", ErrLimitExceeded, width, height, limits.MaxTextureSize)
	}
	if len(layers) > limits.MaxArrayLayers {
		return TextureArray{}, fmt.Errorf("%w: %d layers over %d", ErrLimitExceeded, len(layers), limits.MaxArrayLayers)
	}

	data := make([][]byte, len(layers))
	for i, l := range layers {
		if err := l.validate(width, height); err != nil {
			return TextureArray{}, fmt.Errorf("resource: layer %d: %w", i, err)
		}
		data[i] = l.Pix
	}

	h, e := r.alloc(KindTextureArray)
	id, err := r.device.CreateTextureArray(&gpucore.TextureArrayDescriptor{
		Label:  fmt.Sprintf("texture-array-%d", h.index),
		Width:  width,
		Height: height,
		Layers: data,
	})
	if err != nil {
		r.release(h.index)
		return TextureArray{}, fmt.Errorf("resource: create texture array: %w", err)
	}
	e.texture = TextureArrayInfo{ID: id, Width: width, Height: height, Layers: len(layers)}
	return TextureArray{h}, nil
}

// CreateShader compiles a shader program.
func (r *Registry) CreateShader(desc gpucore.ShaderDescriptor) (Shader, error) {
	switch desc.Builtin {
	case gpucore.ShaderSprite, gpucore.ShaderSolid:
	case gpucore.ShaderCustom:
		if !strings.Contains(desc.WGSL, "vs_main") || !strings.Contains(desc.WGSL, "fs_main") {
			return Shader{}, fmt.Errorf("%w: %q must define vs_main and fs_main", ErrInvalidShader, desc.Label)
		}
	default:
		return Shader{}, fmt.Errorf("%w: unknown builtin %d", ErrInvalidShader, desc.Builtin)
	}

	h, e := r.alloc(KindShader)
	id, err := r.device.CreateShader(&desc)
	if err != nil {
		r.release(h.index)
		return Shader{}, fmt.Errorf("resource: create shader %q: %w", desc.Label, err)
	}
	e.shader = ShaderInfo{ID: id, Label: desc.Label, Builtin: desc.Builtin}
	return Shader{h}, nil
}

// CreateRenderTarget allocates an off-screen target. Its color buffer is
// registered as a one-layer texture array owned by the target; retaining
// or releasing that array acts on the target.
func (r *Registry) CreateRenderTarget(width, height int, depth bool) (RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return RenderTarget{}, fmt.Errorf("%w: render target size %dx%d", ErrInvalidPixels, width, height)
	}
	if maxSize := r.device.Limits().MaxTextureSize; width > maxSize || height > maxSize {
		return RenderTarget{}, fmt.Errorf("%w: render target %dx%d over %d", ErrLimitExceeded, width, height, maxSize)
	}

	th, _ := r.alloc(KindRenderTarget)
	id, texID, err := r.device.CreateRenderTarget(&gpucore.RenderTargetDescriptor{
		Label:  fmt.Sprintf("render-target-%d", th.index),
		Width:  width,
		Height: height,
		Depth:  depth,
	})
	if err != nil {
		r.release(th.index)
		return RenderTarget{}, fmt.Errorf("resource: create render target: %w", err)
	}
	target := RenderTarget{th}

	xh, xe := r.alloc(KindTextureArray)
	xe.texture = TextureArrayInfo{ID: texID, Width: width, Height: height, Layers: 1, Owner: target}

	// alloc may have grown the slice, so fetch the target entry afresh.
	te := &r.entries[th.index]
	te.target = RenderTargetInfo{ID: id, Width: width, Height: height, Depth: depth, Texture: TextureArray{xh}}
	return target, nil
}

// ResolveTextureArray returns the live texture array behind t.
func (r *Registry) ResolveTextureArray(t TextureArray) (TextureArrayInfo, error) {
	e, err := r.lookup(t.h, KindTextureArray)
	if err != nil {
		return TextureArrayInfo{}, err
	}
	return e.texture, nil
}

// ResolveShader returns the live shader behind s.
func (r *Registry) ResolveShader(s Shader) (ShaderInfo, error) {
	e, err := r.lookup(s.h, KindShader)
	if err != nil {
		return ShaderInfo{}, err
	}
	return e.shader, nil
}

// ResolveRenderTarget returns the live target behind t. The surface has no
// registry entry and resolves to ErrInvalidHandle.
func (r *Registry) ResolveRenderTarget(t RenderTarget) (RenderTargetInfo, error) {
	e, err := r.lookup(t.h, KindRenderTarget)
	if err != nil {
		return RenderTargetInfo{}, err
	}
	return e.target, nil
}

// Validate checks that h refers to a live resource of any kind.
func (r *Registry) Validate(h Handle) error {
	_, err := r.lookup(h, 0)
	return err
}

// Retain adds a reference to the resource.
func (r *Registry) Retain(h Handle) error {
	e, err := r.lookup(h, 0)
	if err != nil {
		return err
	}
	if owner := e.texture.Owner; e.kind == KindTextureArray && !owner.IsSurface() {
		return r.Retain(owner.h)
	}
	e.refs++
	return nil
}

// Release drops a reference. When the count reaches zero the device object
// is destroyed and every handle to it becomes stale.
func (r *Registry) Release(h Handle) error {
	e, err := r.lookup(h, 0)
	if err != nil {
		return err
	}
	if owner := e.texture.Owner; e.kind == KindTextureArray && !owner.IsSurface() {
		return r.Release(owner.h)
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	r.destroy(h.index)
	return nil
}

// ReleaseAll destroys every live resource regardless of reference counts:
// render targets first, then shaders, then texture arrays, newest first
// within each kind. Handles issued before the call become stale.
func (r *Registry) ReleaseAll() {
	var order []uint32
	for _, kind := range []Kind{KindRenderTarget, KindShader, KindTextureArray} {
		start := len(order)
		for i := range r.entries {
			e := &r.entries[i]
			if !e.live || e.kind != kind {
				continue
			}
			if kind == KindTextureArray && !e.texture.Owner.IsSurface() {
				continue
			}
			order = append(order, uint32(i))
		}
		group := order[start:]
		slices.SortFunc(group, func(a, b uint32) int {
			sa, sb := r.entries[a].seq, r.entries[b].seq
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			}
			return 0
		})
	}

	n := len(order)
	for _, idx := range order {
		r.destroy(idx)
	}
	if n > 0 {
		logging.Logger().Debug("resource: released all", "count", n)
	}
}

func (r *Registry) lookup(h Handle, kind Kind) (*entry, error) {
	if h.generation == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	if h.registry != r.id {
		return nil, fmt.Errorf("%w: %v", ErrForeignHandle, h)
	}
	if kind != 0 && h.kind != kind {
		return nil, fmt.Errorf("%w: %v is not a %v", ErrInvalidHandle, h, kind)
	}
	if int(h.index) >= len(r.entries) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	e := &r.entries[h.index]
	if !e.live || e.generation != h.generation {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	return e, nil
}

// alloc claims a slot with one reference. The returned pointer is only
// valid until the next alloc.
func (r *Registry) alloc(kind Kind) (Handle, *entry) {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.entries))
		r.entries = append(r.entries, entry{generation: 1})
	}
	r.seq++
	e := &r.entries[idx]
	gen := e.generation
	*e = entry{generation: gen, live: true, kind: kind, refs: 1, seq: r.seq}
	r.live++
	return Handle{registry: r.id, index: idx, generation: gen, kind: kind}, e
}

// release returns a slot to the free list and advances its generation.
func (r *Registry) release(idx uint32) {
	e := &r.entries[idx]
	gen := e.generation + 1
	if gen == 0 {
		gen = 1
	}
	*e = entry{generation: gen}
	r.free = append(r.free, idx)
	r.live--
}

// destroy frees the device object behind a slot and then the slot itself.
func (r *Registry) destroy(idx uint32) {
	e := &r.entries[idx]
	switch e.kind {
	case KindTextureArray:
		r.device.DestroyTextureArray(e.texture.ID)
	case KindShader:
		r.device.DestroyShader(e.shader.ID)
	case KindRenderTarget:
		r.device.DestroyRenderTarget(e.target.ID)
		// The color texture went with the target.
		r.release(e.target.Texture.h.index)
	}
	r.release(idx)
}
