package orrery

import "errors"

var (
	// ErrUninitialized is returned when an operation reaches a runtime
	// that was never created through New or has already been closed.
	ErrUninitialized = errors.New("orrery: runtime not initialized")

	// ErrBorrowConflict is returned when a write overlaps an outstanding
	// read guard, or when a second exclusive borrow is requested while
	// one is still held.
	ErrBorrowConflict = errors.New("orrery: node already borrowed")

	// ErrCycleDetected is returned when a tracked read would make a
	// derivation depend on itself, directly or through other nodes.
	ErrCycleDetected = errors.New("orrery: cycle detected")

	// ErrWriteDuringRecompute is returned when a cell write or other
	// structural change is attempted while a recompute pass is running.
	ErrWriteDuringRecompute = errors.New("orrery: write during recompute")

	// ErrNodeRemoved is returned when a handle outlives its node, either
	// because the node was removed or the runtime was reset.
	ErrNodeRemoved = errors.New("orrery: node removed")

	// ErrForeignNode is returned when a source from one runtime is passed
	// to an operation on another.
	ErrForeignNode = errors.New("orrery: node belongs to a different runtime")
)
