package batch

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/resource"
)

var (
	// ErrFinished is returned by a Builder used after Finish.
	ErrFinished = errors.New("batch: builder already finished")

	// ErrInvalidCommand is returned for a command that can never render.
	ErrInvalidCommand = errors.New("batch: invalid command")
)

type op struct {
	cmd   Command
	clear bool
}

// Builder records one frame of draw commands and clears.
//
// Finish groups only adjacent commands with the same Key. Commands are
// never reordered: blending depends on order, and a caller wanting larger
// batches sorts its own draws.
//
// A Builder is single use.
type Builder struct {
	ops      []op
	draws    int
	finished bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{ops: make([]op, 0, 128)}
}

// Draw appends a command.
func (b *Builder) Draw(cmd Command) error {
	if b.finished {
		return ErrFinished
	}
	if cmd.Shader.IsZero() {
		return fmt.Errorf("%w: no shader", ErrInvalidCommand)
	}
	if cmd.Source.Array.IsZero() {
		return fmt.Errorf("%w: no source texture array", ErrInvalidCommand)
	}
	if cmd.Source.Layer < 0 {
		return fmt.Errorf("%w: layer %d", ErrInvalidCommand, cmd.Source.Layer)
	}
	if !cmd.Blend.Valid() {
		return fmt.Errorf("%w: blend mode %d", ErrInvalidCommand, cmd.Blend)
	}
	b.ops = append(b.ops, op{cmd: cmd})
	b.draws++
	return nil
}

// Clear records an explicit clear of target at this point in the sequence.
func (b *Builder) Clear(target resource.RenderTarget, color graphics.RGBA) error {
	if b.finished {
		return ErrFinished
	}
	b.ops = append(b.ops, op{cmd: Command{Target: target, Tint: color}, clear: true})
	return nil
}

// Len returns the number of recorded draw commands.
func (b *Builder) Len() int { return b.draws }

// Finish partitions the recorded sequence into batches and consumes the
// builder.
func (b *Builder) Finish() ([]Batch, error) {
	if b.finished {
		return nil, ErrFinished
	}
	b.finished = true

	// All command runs share one backing array; each batch gets a
	// capacity-capped window so appends by the caller cannot spill over.
	cmds := make([]Command, 0, b.draws)
	var batches []Batch
	start := 0
	flush := func() {
		if len(cmds) > start {
			run := cmds[start:len(cmds):len(cmds)]
			batches = append(batches, Batch{Key: run[0].Key(), Commands: run})
		}
		start = len(cmds)
	}

	for i := range b.ops {
		o := &b.ops[i]
		if o.clear {
			flush()
			c := o.cmd.Tint
			batches = append(batches, Batch{Key: Key{Target: o.cmd.Target}, Clear: &c})
			continue
		}
		if len(cmds) > start && cmds[start].Key() != o.cmd.Key() {
			flush()
		}
		cmds = append(cmds, o.cmd)
	}
	flush()

	b.ops = nil
	return batches, nil
}
