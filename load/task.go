package load

import (
	"context"

	"github.com/gogpu/ggame/resource"
)

// Task describes how to produce a T. It is a recipe: nothing runs until Run
// is called, and the total amount of work is known before that.
//
// Tasks are values and may be run more than once.
type Task[T any] struct {
	total int
	run   func(w *Worker) (T, error)
}

// New returns a task of one work unit that calls fn.
func New[T any](fn func() (T, error)) Task[T] {
	return Task[T]{total: 1, run: func(w *Worker) (T, error) {
		v, err := fn()
		if err == nil {
			w.Advance(1)
		}
		return v, err
	}}
}

// UsingRegistry returns a task of one work unit that creates resources.
func UsingRegistry[T any](fn func(r *resource.Registry) (T, error)) Task[T] {
	return Task[T]{total: 1, run: func(w *Worker) (T, error) {
		v, err := fn(w.registry)
		if err == nil {
			w.Advance(1)
		}
		return v, err
	}}
}

// Sized returns a task of n work units. fn reports its own progress with
// Worker.Advance; whatever it leaves unreported is completed when it
// returns successfully.
func Sized[T any](n int, fn func(w *Worker) (T, error)) Task[T] {
	if n < 0 {
		n = 0
	}
	return Task[T]{total: n, run: func(w *Worker) (T, error) {
		start := w.progress.Completed
		v, err := fn(w)
		if err == nil {
			if rest := start + n - w.progress.Completed; rest > 0 {
				w.Advance(rest)
			}
		}
		return v, err
	}}
}

// Value returns a task without work that yields v.
func Value[T any](v T) Task[T] {
	return Task[T]{run: func(*Worker) (T, error) { return v, nil }}
}

// Stage names a task. Progress reports the innermost running stage, and
// failures inside the task carry its title.
func Stage[T any](title string, t Task[T]) Task[T] {
	return Task[T]{total: t.total, run: func(w *Worker) (T, error) {
		w.progress.Stages = append(w.progress.Stages, title)
		w.notify()
		defer func() { w.progress.Stages = w.progress.Stages[:len(w.progress.Stages)-1] }()
		return exec(w, t.run)
	}}
}

// Map transforms the result of a task.
func Map[T, U any](t Task[T], fn func(T) U) Task[U] {
	return Task[U]{total: t.total, run: func(w *Worker) (U, error) {
		v, err := exec(w, t.run)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v), nil
	}}
}

// Join runs a then b and combines their results.
func Join[A, B, C any](a Task[A], b Task[B], fn func(A, B) C) Task[C] {
	return Task[C]{total: a.total + b.total, run: func(w *Worker) (C, error) {
		var zero C
		va, err := exec(w, a.run)
		if err != nil {
			return zero, err
		}
		vb, err := exec(w, b.run)
		if err != nil {
			return zero, err
		}
		return fn(va, vb), nil
	}}
}

// All runs tasks in order and collects their results.
func All[T any](tasks ...Task[T]) Task[[]T] {
	total := 0
	for _, t := range tasks {
		total += t.total
	}
	return Task[[]T]{total: total, run: func(w *Worker) ([]T, error) {
		out := make([]T, 0, len(tasks))
		for _, t := range tasks {
			v, err := exec(w, t.run)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}}
}

// Total returns the number of work units of the task.
func (t Task[T]) Total() int { return t.total }

// Run executes the task. onProgress, if not nil, is called with 0% before
// any work and after every change of progress or stage. Resources are
// created in reg, which may be nil for tasks that create none.
//
// A failure is returned as *Error. Cancelling ctx stops the task before its
// next unit of work.
func (t Task[T]) Run(ctx context.Context, reg *resource.Registry, onProgress func(Progress)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	w := &Worker{
		ctx:      ctx,
		registry: reg,
		listener: onProgress,
		progress: Progress{Total: t.total},
	}
	w.notify()
	if t.run == nil {
		var zero T
		return zero, nil
	}
	return exec(w, t.run)
}
