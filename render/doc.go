// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render executes finished batches on a gpucore.Device.
//
// An Executor takes the ordered batches of one frame, resolves their
// handles through the resource registry and turns every drawing batch into
// a single instanced draw. Clears happen only where the caller recorded
// one. After the last batch the surface is presented.
//
// # Off-screen targets
//
// Targets are composed in the order the frame first references them. A
// batch may sample an off-screen target's color texture only when all
// drawing into that target happened in earlier batches:
//
//	clear(canvas) draw(canvas, ...) draw(surface, canvas texture)  // ok
//	draw(surface, canvas texture) draw(canvas, ...)                 // ErrOrderingViolation
//
// The executor never reorders batches to resolve such dependencies.
//
// # Failures
//
// Stale handles and ordering violations are reported before any device
// call. A device failure is wrapped in *SubmissionError, matches
// ErrBackendSubmission and makes the executor refuse further frames; there
// is no device-loss recovery.
package render
