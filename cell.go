package orrery

// cellBox stores a cell's value. It never recomputes; only Write and
// WriteGuard touch it.
type cellBox[T comparable] struct {
	value T
}

func (b *cellBox[T]) get() T        { return b.value }
func (b *cellBox[T]) valueAny() any { return b.value }

// Cell is a writable observable value. Derivations that read it are
// recomputed when it changes.
type Cell[T comparable] struct {
	readable[T]
	box *cellBox[T]
}

// Observable registers a new cell holding initial.
func Observable[T comparable](rt *Runtime, initial T) (*Cell[T], error) {
	if err := rt.ensure(); err != nil {
		return nil, err
	}
	b := &cellBox[T]{value: initial}
	h := rt.reg.alloc(kindObservable, b)
	return &Cell[T]{readable: readable[T]{rt: rt, h: h}, box: b}, nil
}

// Write stores v and synchronously recomputes everything downstream.
// The value is stored even if it equals the old one; unchanged results
// stop the wave at the first derivation whose output does not move.
// Write fails with ErrWriteDuringRecompute inside a recompute pass and
// with ErrBorrowConflict while any guard on the cell is outstanding.
func (c *Cell[T]) Write(v T) error {
	rt := c.rt
	if err := rt.ensure(); err != nil {
		return err
	}
	if rt.busy() {
		return ErrWriteDuringRecompute
	}
	n, err := rt.reg.lookup(c.h)
	if err != nil {
		return err
	}
	if n.borrow != borrowFree {
		return ErrBorrowConflict
	}
	c.box.value = v
	return rt.propagateFrom(c.h)
}

// BorrowMut takes an exclusive borrow of the cell for in-place edits.
// The cell is unreadable and unwritable until the guard is released,
// and the release is what propagates the edit.
func (c *Cell[T]) BorrowMut() (*WriteGuard[T], error) {
	rt := c.rt
	if err := rt.ensure(); err != nil {
		return nil, err
	}
	if rt.busy() {
		return nil, ErrWriteDuringRecompute
	}
	n, err := rt.reg.lookup(c.h)
	if err != nil {
		return nil, err
	}
	if n.borrow != borrowFree {
		return nil, ErrBorrowConflict
	}
	n.borrow = borrowExclusive
	return &WriteGuard[T]{rt: rt, h: c.h, box: c.box}, nil
}
