package load

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/ggame/resource"
)

// ErrLoad is matched by every error returned from Task.Run.
var ErrLoad = errors.New("load: failed")

// Error is a failed load. Stage is the title of the innermost stage that
// was running, or empty outside any stage.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoad.
func (e *Error) Is(target error) bool { return target == ErrLoad }

// Progress is the state of a running task.
type Progress struct {
	// Total is the work of the whole task.
	Total int
	// Completed is the work done so far, never more than Total.
	Completed int
	// Stages are the titles of the running stages, outermost first.
	Stages []string
}

// Percentage returns the completed share in [0, 100]. A task without work
// counts as one unit.
func (p Progress) Percentage() float64 {
	total := max(p.Total, 1)
	return float64(min(p.Completed, total)) / float64(total) * 100
}

// Stage returns the innermost running stage title, or "".
func (p Progress) Stage() string {
	if len(p.Stages) == 0 {
		return ""
	}
	return p.Stages[len(p.Stages)-1]
}

// Worker is handed to the function of a Sized task.
type Worker struct {
	ctx      context.Context
	registry *resource.Registry
	listener func(Progress)
	progress Progress
}

// Context returns the context of the run.
func (w *Worker) Context() context.Context { return w.ctx }

// Registry returns the registry resources are created in. It may be nil.
func (w *Worker) Registry() *resource.Registry { return w.registry }

// Advance reports n completed work units.
func (w *Worker) Advance(n int) {
	if n <= 0 {
		return
	}
	w.progress.Completed = min(w.progress.Completed+n, w.progress.Total)
	w.notify()
}

func (w *Worker) notify() {
	if w.listener == nil {
		return
	}
	p := w.progress
	p.Stages = slices.Clone(p.Stages)
	w.listener(p)
}

// exec runs one step of a task, checking for cancellation first and
// attaching the current stage to failures.
func exec[T any](w *Worker, run func(*Worker) (T, error)) (T, error) {
	var zero T
	if err := w.ctx.Err(); err != nil {
		return zero, &Error{Stage: w.progress.Stage(), Err: err}
	}
	if run == nil {
		return zero, nil
	}
	v, err := run(w)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return zero, err
		}
		return zero, &Error{Stage: w.progress.Stage(), Err: err}
	}
	return v, nil
}
