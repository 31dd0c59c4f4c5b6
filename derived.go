package orrery

// Derived is a read-only node whose value is produced by a thunk. Its
// dependencies are whatever the thunk read on its most recent run.
type Derived[T comparable] struct {
	readable[T]
}

// Derivation registers a derived node and runs thunk once to establish
// its value and dependency edges. Reads the thunk performs through Get
// or Read are tracked; each run replaces the edge set wholesale, so a
// source that stops being read stops triggering recomputes.
//
// A thunk error aborts the run with no value stored and no edges kept,
// and during construction the node itself is rolled back.
func Derivation[T comparable](rt *Runtime, thunk func() (T, error)) (*Derived[T], error) {
	if err := rt.ensure(); err != nil {
		return nil, err
	}
	b := &autoBox[T]{thunk: thunk}
	h := rt.reg.alloc(kindDerivation, b)
	if _, err := b.recompute(rt, h); err != nil {
		rt.reg.removeNode(h)
		return nil, err
	}
	return &Derived[T]{readable[T]{rt: rt, h: h}}, nil
}

// autoBox is the state of a tracked derivation.
type autoBox[T comparable] struct {
	value T
	thunk func() (T, error)
}

func (b *autoBox[T]) get() T        { return b.value }
func (b *autoBox[T]) valueAny() any { return b.value }

// recompute runs the thunk under a fresh tracking frame, swaps the
// dependency set for what was actually read, then commits the value.
// On error nothing is committed: the old value and old edges stay.
func (b *autoBox[T]) recompute(rt *Runtime, h handle) (bool, error) {
	if err := rt.pushFrame(h, true); err != nil {
		return false, err
	}
	next, err := b.thunk()
	f := rt.popFrame()
	if err != nil {
		return false, err
	}
	rt.reg.rewireDeps(h, f.reads)
	changed := next != b.value
	b.value = next
	return changed, nil
}

// newExplicit registers a derivation over a fixed, declared source
// list. All sources are read-guarded for the duration of fn, and the
// edges never change after construction. The generated DerivationN
// constructors all funnel through here.
func newExplicit[O comparable](rt *Runtime, sources []Source, fn func(args []any) O) (*Derived[O], error) {
	if err := rt.ensure(); err != nil {
		return nil, err
	}
	hs := make([]handle, len(sources))
	for i, s := range sources {
		if s.runtime() != rt {
			return nil, ErrForeignNode
		}
		hs[i] = s.node()
	}
	b := &explicitBox[O]{sources: hs, fn: fn}
	h := rt.reg.alloc(kindDerivation, b)
	if _, err := b.recompute(rt, h); err != nil {
		rt.reg.removeNode(h)
		return nil, err
	}
	for _, src := range hs {
		rt.reg.addEdge(src, h)
	}
	return &Derived[O]{readable[O]{rt: rt, h: h}}, nil
}

// explicitBox is the state of a fixed-source derivation. sources keeps
// the declared order, duplicates included, so fn's arguments line up
// with the constructor call even though the edge set dedupes.
type explicitBox[O comparable] struct {
	value   O
	sources []handle
	fn      func(args []any) O
}

func (b *explicitBox[O]) get() O        { return b.value }
func (b *explicitBox[O]) valueAny() any { return b.value }

func (b *explicitBox[O]) recompute(rt *Runtime, h handle) (bool, error) {
	if err := rt.pushFrame(h, false); err != nil {
		return false, err
	}
	defer rt.popFrame()

	args := make([]any, len(b.sources))
	held := make([]handle, 0, len(b.sources))
	release := func() {
		for _, sh := range held {
			if n, err := rt.reg.lookup(sh); err == nil && n.borrow > 0 {
				n.borrow--
			}
		}
		held = held[:0]
	}
	defer release()

	for i, sh := range b.sources {
		n, err := rt.reg.lookup(sh)
		if err != nil {
			return false, err
		}
		if n.borrow == borrowExclusive {
			return false, ErrBorrowConflict
		}
		n.borrow++
		held = append(held, sh)
		args[i] = n.box.valueAny()
	}

	next := b.fn(args)
	release()

	changed := next != b.value
	b.value = next
	return changed, nil
}
