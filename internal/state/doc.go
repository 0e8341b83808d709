// Package state holds the in-memory collections the views render from.
//
// # Overview
//
// There is one container per entity. Products mirrors the remote catalog and
// requires a successful gateway round-trip before any local change. Users is
// purely local. Both write through to a single key in the local store (see
// package kv) in the same critical section that swaps the in-memory items, so
// memory never runs ahead of what survives a restart.
//
// # Commands
//
// Mutating commands take the collection's write slot first. Overlapping
// create, update and delete calls therefore run one at a time in call order:
//
//	go products.Delete(ctx, 3)
//	go products.Update(ctx, p) // waits for the delete
//
// While a command runs the status is loading; it ends as succeeded or failed.
// A failed command keeps the previous items and records the error text.
//
// # Clearing
//
// Clear does not wait for the write slot. It bumps a generation counter, and a
// command that started under an older generation drops its result and returns
// ErrStale. Logging out while a fetch is in flight cannot resurrect products.
//
// # Snapshots
//
// Snapshot returns copies. Subscribe delivers a snapshot after every change on
// the goroutine that made it; subscribers must not block.
package state
