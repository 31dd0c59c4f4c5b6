package orrery

// readable is the read surface shared by Cell and Derived.
type readable[T comparable] struct {
	rt *Runtime
	h  handle
}

func (r *readable[T]) node() handle      { return r.h }
func (r *readable[T]) runtime() *Runtime { return r.rt }

// Read acquires a shared borrow and returns a guard over a snapshot of
// the current value. Inside a derivation thunk the read is tracked and
// becomes a dependency edge. The guard blocks writers until released.
func (r *readable[T]) Read() (*ReadGuard[T], error) {
	return readGuarded[T](r.rt, r.h, true)
}

// ReadUntracked is Read without dependency registration. A derivation
// thunk can use it to consult a node without subscribing to it.
func (r *readable[T]) ReadUntracked() (*ReadGuard[T], error) {
	return readGuarded[T](r.rt, r.h, false)
}

// Get is a tracked read that releases its borrow before returning.
func (r *readable[T]) Get() (T, error) {
	g, err := readGuarded[T](r.rt, r.h, true)
	if err != nil {
		var zero T
		return zero, err
	}
	v := g.Value()
	g.Release()
	return v, nil
}

// Peek is an untracked Get.
func (r *readable[T]) Peek() (T, error) {
	g, err := readGuarded[T](r.rt, r.h, false)
	if err != nil {
		var zero T
		return zero, err
	}
	v := g.Value()
	g.Release()
	return v, nil
}

func readGuarded[T comparable](rt *Runtime, h handle, tracked bool) (*ReadGuard[T], error) {
	if err := rt.ensure(); err != nil {
		return nil, err
	}
	n, err := rt.reg.lookup(h)
	if err != nil {
		return nil, err
	}
	if n.borrow == borrowExclusive {
		return nil, ErrBorrowConflict
	}
	if tracked {
		if err := rt.noteRead(h); err != nil {
			return nil, err
		}
	}
	n.borrow++
	return &ReadGuard[T]{rt: rt, h: h, value: n.box.(valueBox[T]).get()}, nil
}

// ReadGuard is a shared borrow of one node. Holding it keeps writers
// out; the value it exposes is a snapshot taken at acquisition.
type ReadGuard[T comparable] struct {
	rt       *Runtime
	h        handle
	value    T
	released bool
}

// Value returns the snapshot taken when the guard was acquired.
func (g *ReadGuard[T]) Value() T {
	return g.value
}

// Release drops the shared borrow. Releasing twice is a no-op.
func (g *ReadGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	if n, err := g.rt.reg.lookup(g.h); err == nil && n.borrow > 0 {
		n.borrow--
	}
}

// WriteGuard is an exclusive borrow of one cell. Value points straight
// at the stored value; Release commits whatever was written there and
// propagates, exactly as a direct Write would.
type WriteGuard[T comparable] struct {
	rt       *Runtime
	h        handle
	box      *cellBox[T]
	released bool
}

// Value returns a pointer to the cell's stored value, valid until the
// guard is released.
func (g *WriteGuard[T]) Value() *T {
	return &g.box.value
}

// Release drops the exclusive borrow and propagates the new value to
// dependents. Releasing twice is a no-op and returns nil.
func (g *WriteGuard[T]) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	if err := g.rt.ensure(); err != nil {
		return err
	}
	n, err := g.rt.reg.lookup(g.h)
	if err != nil {
		return err
	}
	n.borrow = borrowFree
	return g.rt.propagateFrom(g.h)
}
