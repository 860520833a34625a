// Package render owns the object lifecycle reconciliation engine: given a
// mutable labeled volume, it decides which rendered objects are obsolete,
// which can be attached from cached geometry, and which need a fresh
// asynchronous mesh extraction batch.
//
// This package is the composition root: it imports labels, volume, mesh, and
// meshstore, but none of those packages import render.
//
// Concurrency model: a Manager runs a single control goroutine which owns
// the volume, the allocator, the color map, and all scene mutation. Public
// methods queue onto that goroutine and wait; mesh batch callbacks are
// posted back onto it. Scene implementations are therefore only ever called
// from the control goroutine and need no locking of their own — but they
// must not call back into the Manager synchronously, or they will deadlock
// the control loop.
package render
