// Package batch groups draw commands into batches of shared render state.
//
// A batch is a maximal run of adjacent commands whose target, shader,
// texture array and blend mode are equal. Each batch becomes one instanced
// draw. Given
//
//	A(T1, S1), B(T1, S1), C(T1, S2)
//
// Finish returns [A B] [C], and given A(T1), B(T2), C(T1) it returns three
// batches in that order.
package batch
