// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggame/resource"
)

var (
	// ErrOrderingViolation is returned when a batch samples an off-screen
	// target before all of that target's drawing in the frame was submitted.
	ErrOrderingViolation = errors.New("render: ordering violation")

	// ErrBackendSubmission is returned when the device rejects frame work.
	// It is fatal for the session.
	ErrBackendSubmission = errors.New("render: backend submission failed")

	// ErrLayerOutOfRange is returned for a command whose layer is not in its
	// texture array.
	ErrLayerOutOfRange = errors.New("render: layer out of range")

	// ErrExecutorFailed is returned by Submit after an earlier submission
	// failure.
	ErrExecutorFailed = errors.New("render: executor unusable after backend failure")
)

// OrderingError reports an off-screen target sampled too early.
type OrderingError struct {
	// Batch is the index of the sampling batch.
	Batch int
	// Target is the off-screen target whose texture was sampled.
	Target resource.RenderTarget
	// Writer is the index of the batch that writes Target at or after Batch.
	Writer int
}

func (e *OrderingError) Error() string {
	if e.Writer == e.Batch {
		return fmt.Sprintf("render: ordering violation: batch %d samples %v while drawing into it", e.Batch, e.Target)
	}
	return fmt.Sprintf("render: ordering violation: batch %d samples %v before batch %d writes it", e.Batch, e.Target, e.Writer)
}

// Is reports whether target is ErrOrderingViolation.
func (e *OrderingError) Is(target error) bool { return target == ErrOrderingViolation }

// SubmissionError wraps a device failure.
type SubmissionError struct {
	// Op is the device operation that failed.
	Op string
	// Batch is the failing batch, or -1 for frame operations.
	Batch int
	Err   error
}

func (e *SubmissionError) Error() string {
	if e.Batch < 0 {
		return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("render: %s batch %d: %v", e.Op, e.Batch, e.Err)
}

// Unwrap returns the device error.
func (e *SubmissionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBackendSubmission.
func (e *SubmissionError) Is(target error) bool { return target == ErrBackendSubmission }
