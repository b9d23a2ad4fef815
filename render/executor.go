// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"slices"

	"github.com/gogpu/ggame/batch"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/internal/logging"
	"github.com/gogpu/ggame/resource"
)

// Stats describes the last submitted frame.
type Stats struct {
	Batches   int
	DrawCalls int
	Instances int
	Clears    int
	// Targets lists the targets of the frame in the order they were first
	// referenced. The surface appears as the zero RenderTarget.
	Targets []resource.RenderTarget
}

// resolved is a batch with every handle turned into device IDs.
type resolved struct {
	target        gpucore.TargetID
	width, height int
	shader        gpucore.ShaderID
	texture       gpucore.TextureID
	// owner is the render target whose color buffer the batch samples.
	owner resource.RenderTarget
}

// Executor submits finished batches to a device and presents the frame.
//
// Executor is not safe for concurrent use.
type Executor struct {
	device   gpucore.Device
	registry *resource.Registry

	width, height int

	resolved  []resolved
	instances []gpucore.Instance
	stats     Stats
	failed    error
}

// NewExecutor returns an executor drawing through device with handles
// resolved by registry.
func NewExecutor(device gpucore.Device, registry *resource.Registry) *Executor {
	return &Executor{device: device, registry: registry}
}

// SetSurfaceSize sets the size of the presentable surface.
func (e *Executor) SetSurfaceSize(width, height int) {
	e.width, e.height = width, height
}

// SurfaceSize returns the size of the presentable surface.
func (e *Executor) SurfaceSize() (width, height int) { return e.width, e.height }

// Stats returns statistics of the last successful frame.
func (e *Executor) Stats() Stats { return e.stats }

// Submit executes one frame: every batch in order, then present.
//
// Handles and ordering are validated before the device sees any work, so a
// programmer error leaves the device untouched. A device failure returns a
// *SubmissionError and makes the executor unusable.
func (e *Executor) Submit(batches []batch.Batch) error {
	if e.failed != nil {
		return fmt.Errorf("%w: %w", ErrExecutorFailed, e.failed)
	}
	if err := e.resolve(batches); err != nil {
		return err
	}
	if err := e.checkOrdering(batches); err != nil {
		return err
	}

	stats := Stats{Batches: len(batches), Targets: firstReferences(batches)}
	if err := e.device.BeginFrame(e.width, e.height); err != nil {
		return e.fail(&SubmissionError{Op: "begin frame", Batch: -1, Err: err})
	}
	for i := range batches {
		b := &batches[i]
		r := &e.resolved[i]
		if b.IsClear() {
			if err := e.device.Clear(r.target, *b.Clear); err != nil {
				return e.fail(&SubmissionError{Op: "clear", Batch: i, Err: err})
			}
			stats.Clears++
			continue
		}
		if len(b.Commands) == 0 {
			continue
		}
		e.instances = appendInstances(e.instances[:0], b.Commands)
		call := gpucore.DrawCall{
			Target:       r.target,
			TargetWidth:  r.width,
			TargetHeight: r.height,
			Shader:       r.shader,
			Texture:      r.texture,
			Blend:        b.Key.Blend,
			Instances:    e.instances,
		}
		if err := e.device.Draw(&call); err != nil {
			return e.fail(&SubmissionError{Op: "draw", Batch: i, Err: err})
		}
		stats.DrawCalls++
		stats.Instances += len(e.instances)
	}
	if err := e.device.Present(); err != nil {
		return e.fail(&SubmissionError{Op: "present", Batch: -1, Err: err})
	}
	e.stats = stats
	return nil
}

func (e *Executor) fail(err *SubmissionError) error {
	e.failed = err
	logging.Logger().Error("render: backend failure", "op", err.Op, "batch", err.Batch, "err", err.Err)
	return err
}

func (e *Executor) resolve(batches []batch.Batch) error {
	e.resolved = slices.Grow(e.resolved[:0], len(batches))[:len(batches)]
	for i := range batches {
		b := &batches[i]
		r := &e.resolved[i]
		*r = resolved{}

		if b.Key.Target.IsSurface() {
			r.target, r.width, r.height = gpucore.Surface, e.width, e.height
		} else {
			info, err := e.registry.ResolveRenderTarget(b.Key.Target)
			if err != nil {
				return fmt.Errorf("render: batch %d target: %w", i, err)
			}
			r.target, r.width, r.height = info.ID, info.Width, info.Height
		}
		if b.IsClear() || len(b.Commands) == 0 {
			continue
		}

		sh, err := e.registry.ResolveShader(b.Key.Shader)
		if err != nil {
			return fmt.Errorf("render: batch %d shader: %w", i, err)
		}
		tex, err := e.registry.ResolveTextureArray(b.Key.Array)
		if err != nil {
			return fmt.Errorf("render: batch %d texture array: %w", i, err)
		}
		for j := range b.Commands {
			if l := b.Commands[j].Source.Layer; l >= tex.Layers {
				return fmt.Errorf("%w: batch %d command %d uses layer %d of %d", ErrLayerOutOfRange, i, j, l, tex.Layers)
			}
		}
		r.shader, r.texture, r.owner = sh.ID, tex.ID, tex.Owner
	}
	return nil
}

// checkOrdering rejects a batch sampling an off-screen target that the same
// or a later batch still writes. Draw order is definitional; nothing is
// reordered to satisfy dependencies.
func (e *Executor) checkOrdering(batches []batch.Batch) error {
	lastWrite := make(map[resource.RenderTarget]int)
	for i := range batches {
		if t := batches[i].Key.Target; !t.IsSurface() {
			lastWrite[t] = i
		}
	}
	for i := range batches {
		owner := e.resolved[i].owner
		if owner.IsSurface() {
			continue
		}
		if w, ok := lastWrite[owner]; ok && w >= i {
			writer := w
			if batches[i].Key.Target == owner {
				writer = i
			}
			return &OrderingError{Batch: i, Target: owner, Writer: writer}
		}
	}
	return nil
}

func firstReferences(batches []batch.Batch) []resource.RenderTarget {
	var order []resource.RenderTarget
	for i := range batches {
		t := batches[i].Key.Target
		if !slices.Contains(order, t) {
			order = append(order, t)
		}
	}
	return order
}
