// Package orrery implements observable cells and derived computations
// over them. Derivations discover their dependencies at run time: reads
// performed while a thunk executes become edges in a dependency graph,
// and a write to a cell recomputes exactly the derivations downstream
// of it, in topological order, stopping wherever a recomputed value
// comes out unchanged.
//
// A Runtime owns one graph and is single-threaded. Nothing in the
// package locks; callers that share a Runtime across goroutines must
// serialize access themselves.
package orrery

import "fmt"

// ErrorHook receives every error raised while a propagation pass is
// running, in addition to the error being returned to the caller that
// triggered the pass.
type ErrorHook func(err error)

// Runtime owns a dependency graph of cells and derivations. The zero
// value is unusable; create one with New.
type Runtime struct {
	reg         registry
	frames      []frame
	onError     ErrorHook
	propagating bool
	initialized bool
}

// New creates an empty runtime. onError may be nil.
func New(onError ErrorHook) *Runtime {
	return &Runtime{onError: onError, initialized: true}
}

// Initialized reports whether the runtime is usable, false for the zero
// value and after Close.
func (rt *Runtime) Initialized() bool {
	return rt != nil && rt.initialized
}

// Close tears down the graph and marks the runtime unusable. It fails
// with ErrBorrowConflict while any guard is outstanding and with
// ErrWriteDuringRecompute from inside a recompute.
func (rt *Runtime) Close() error {
	if err := rt.ensure(); err != nil {
		return err
	}
	if rt.busy() {
		return fmt.Errorf("orrery: close during recompute: %w", ErrWriteDuringRecompute)
	}
	if rt.reg.anyBorrowed() {
		return ErrBorrowConflict
	}
	rt.reg.removeAll()
	rt.initialized = false
	return nil
}

// Reset removes every node and edge but keeps the runtime usable.
// Handles issued before the reset fail with ErrNodeRemoved afterwards.
func (rt *Runtime) Reset() error {
	if err := rt.ensure(); err != nil {
		return err
	}
	if rt.busy() {
		return fmt.Errorf("orrery: reset during recompute: %w", ErrWriteDuringRecompute)
	}
	if rt.reg.anyBorrowed() {
		return ErrBorrowConflict
	}
	rt.reg.removeAll()
	return nil
}

// Remove deletes the given nodes and prunes their edges on both sides.
// Dependents that still read a removed node through a stale handle get
// ErrNodeRemoved on their next recompute. Nothing is removed unless
// every argument is removable.
func (rt *Runtime) Remove(sources ...Source) error {
	if err := rt.ensure(); err != nil {
		return err
	}
	if rt.busy() {
		return fmt.Errorf("orrery: remove during recompute: %w", ErrWriteDuringRecompute)
	}
	for _, s := range sources {
		if s.runtime() != rt {
			return ErrForeignNode
		}
		n, err := rt.reg.lookup(s.node())
		if err != nil {
			return err
		}
		if n.borrow != borrowFree {
			return ErrBorrowConflict
		}
	}
	for _, s := range sources {
		// tolerate the same node given twice
		if _, err := rt.reg.lookup(s.node()); err != nil {
			continue
		}
		rt.reg.removeNode(s.node())
	}
	return nil
}

// Stats counts the live nodes and edges.
func (rt *Runtime) Stats() (Stats, error) {
	if err := rt.ensure(); err != nil {
		return Stats{}, err
	}
	return rt.reg.stats(), nil
}

// Fingerprint returns a digest of the graph's shape. Two runtimes that
// performed the same sequence of structural operations report the same
// digest, and a failed operation leaves it untouched.
func (rt *Runtime) Fingerprint() (uint64, error) {
	if err := rt.ensure(); err != nil {
		return 0, err
	}
	return rt.reg.fingerprint(), nil
}

func (rt *Runtime) ensure() error {
	if rt == nil || !rt.initialized {
		return ErrUninitialized
	}
	return nil
}

// busy reports whether a recompute is anywhere on the call stack, which
// is when cell writes and structural changes are refused.
func (rt *Runtime) busy() bool {
	return rt.propagating || len(rt.frames) > 0
}

func (rt *Runtime) reportError(err error) {
	if rt.onError != nil {
		rt.onError(err)
	}
}
