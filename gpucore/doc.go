// Package gpucore defines the contract between the frame executor and the
// rendering backends.
//
// The contract is deliberately small: a backend creates texture arrays,
// shader programs and off-screen targets, executes explicit clears and
// instanced quad draws in submission order, and presents the surface once
// per frame. Backends live under backend/ and are selected once at startup.
//
// Nothing here is generation checked or reference counted. Resource
// lifetimes are managed by package resource, which is the only caller of the
// Create and Destroy methods.
package gpucore
