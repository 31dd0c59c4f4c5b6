package orrery

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// planFrom collects every derivation reachable downstream of origin and
// orders it so that each one runs after all of its in-plan
// dependencies. Edges are acyclic by construction; a leftover after the
// topological sort means the invariant broke and the pass is refused.
func (rt *Runtime) planFrom(origin handle) ([]handle, error) {
	o, err := rt.reg.lookup(origin)
	if err != nil {
		return nil, err
	}
	if o.subs.Cardinality() == 0 {
		return nil, nil
	}

	reached := mapset.NewThreadUnsafeSet[handle]()
	queue := o.subs.ToSlice()
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if reached.Contains(h) {
			continue
		}
		reached.Add(h)
		n, err := rt.reg.lookup(h)
		if err != nil {
			return nil, err
		}
		queue = append(queue, n.subs.ToSlice()...)
	}

	indeg := make(map[handle]int, reached.Cardinality())
	reached.Each(func(h handle) bool {
		count := 0
		rt.reg.at(h).deps.Each(func(d handle) bool {
			if reached.Contains(d) {
				count++
			}
			return false
		})
		indeg[h] = count
		return false
	})

	ready := make([]handle, 0, len(indeg))
	for h, count := range indeg {
		if count == 0 {
			ready = append(ready, h)
		}
	}
	order := make([]handle, 0, len(indeg))
	for len(ready) > 0 {
		h := ready[0]
		ready = ready[1:]
		order = append(order, h)
		rt.reg.at(h).subs.Each(func(s handle) bool {
			if count, ok := indeg[s]; ok {
				count--
				indeg[s] = count
				if count == 0 {
					ready = append(ready, s)
				}
			}
			return false
		})
	}
	if len(order) != len(indeg) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// propagateFrom runs one recompute pass for a change at origin. Each
// planned derivation runs at most once, and only if at least one of its
// dependencies changed this pass, so diamonds recompute once and
// unchanged values cut the wave off. The first failure aborts the pass:
// derivations recomputed before it keep their new values, the failed
// one and everything after keep their old ones.
func (rt *Runtime) propagateFrom(origin handle) error {
	plan, err := rt.planFrom(origin)
	if err != nil {
		rt.reportError(err)
		return err
	}
	if len(plan) == 0 {
		return nil
	}

	rt.propagating = true
	defer func() { rt.propagating = false }()

	changed := mapset.NewThreadUnsafeSet[handle](origin)
	for _, h := range plan {
		n, err := rt.reg.lookup(h)
		if err != nil {
			rt.reportError(err)
			return err
		}
		affected := false
		n.deps.Each(func(d handle) bool {
			affected = changed.Contains(d)
			return affected
		})
		if !affected {
			continue
		}
		if n.borrow != borrowFree {
			err := fmt.Errorf("orrery: recompute of borrowed node: %w", ErrBorrowConflict)
			rt.reportError(err)
			return err
		}
		didChange, err := n.box.(recomputable).recompute(rt, h)
		if err != nil {
			err = fmt.Errorf("orrery: recompute failed: %w", err)
			rt.reportError(err)
			return err
		}
		if didChange {
			changed.Add(h)
		}
	}
	return nil
}
