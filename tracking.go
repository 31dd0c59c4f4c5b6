package orrery

import mapset "github.com/deckarep/golang-set/v2"

// frame records the reads of one derivation recompute. Frames nest when
// a thunk constructs another derivation, so they live on a stack and
// tracked reads always land on the innermost one.
type frame struct {
	deriv    handle
	tracking bool

	// reads keeps first-read order, seen dedupes repeats within a pass.
	reads []handle
	seen  mapset.Set[handle]
}

func (rt *Runtime) pushFrame(h handle, tracking bool) error {
	for i := range rt.frames {
		if rt.frames[i].deriv == h {
			return ErrCycleDetected
		}
	}
	f := frame{deriv: h, tracking: tracking}
	if tracking {
		f.seen = mapset.NewThreadUnsafeSet[handle]()
	}
	rt.frames = append(rt.frames, f)
	return nil
}

func (rt *Runtime) popFrame() frame {
	f := rt.frames[len(rt.frames)-1]
	rt.frames = rt.frames[:len(rt.frames)-1]
	return f
}

// noteRead registers a tracked read of h against the innermost frame.
// Outside a tracking frame it is a no-op, which is what makes reads at
// the top level plain reads.
//
// An edge is refused when it would close a cycle: h is mid-recompute on
// the frame stack, or h already depends on the reading derivation.
// Edges that survived a previous pass are accepted without re-walking
// the graph.
func (rt *Runtime) noteRead(h handle) error {
	if len(rt.frames) == 0 {
		return nil
	}
	f := &rt.frames[len(rt.frames)-1]
	if !f.tracking {
		return nil
	}
	if f.seen.Contains(h) {
		return nil
	}
	if !rt.reg.at(f.deriv).deps.Contains(h) {
		for i := range rt.frames {
			if rt.frames[i].deriv == h {
				return ErrCycleDetected
			}
		}
		if rt.reg.reachesUpstream(h, f.deriv) {
			return ErrCycleDetected
		}
	}
	f.seen.Add(h)
	f.reads = append(f.reads, h)
	return nil
}
