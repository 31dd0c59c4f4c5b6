package orrery

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// handle addresses a node slot in the registry arena. The generation is
// bumped every time a slot is vacated, so handles held past a removal
// stop resolving instead of aliasing whatever reuses the slot.
type handle struct {
	idx uint32
	gen uint32
}

type nodeKind uint8

const (
	kindObservable nodeKind = iota
	kindDerivation
)

const (
	borrowFree      = 0
	borrowExclusive = -1
)

// node is one arena slot. deps and subs mirror each other: for every
// dependency d of n, n is in d's subs.
type node struct {
	gen   uint32
	kind  nodeKind
	alive bool

	// borrowFree, borrowExclusive, or a positive shared reader count.
	borrow int32

	deps mapset.Set[handle]
	subs mapset.Set[handle]
	box  box
}

// Stats is a point-in-time census of the live graph.
type Stats struct {
	Observables int
	Derivations int
	Edges       int
}

type registry struct {
	nodes []node
	free  []uint32
}

// alloc reserves a slot for a new node. Generations start at 1 so the
// zero handle never resolves.
func (r *registry) alloc(kind nodeKind, b box) handle {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		slot := &r.nodes[idx]
		slot.kind = kind
		slot.alive = true
		slot.borrow = borrowFree
		slot.deps = mapset.NewThreadUnsafeSet[handle]()
		slot.subs = mapset.NewThreadUnsafeSet[handle]()
		slot.box = b
		return handle{idx: idx, gen: slot.gen}
	}
	r.nodes = append(r.nodes, node{
		gen:   1,
		kind:  kind,
		alive: true,
		deps:  mapset.NewThreadUnsafeSet[handle](),
		subs:  mapset.NewThreadUnsafeSet[handle](),
		box:   b,
	})
	return handle{idx: uint32(len(r.nodes) - 1), gen: 1}
}

// lookup resolves a handle, failing if the slot was vacated or reused
// since the handle was issued.
//
// The returned pointer is only valid until the arena next grows, so it
// must not be held across anything that can allocate nodes.
func (r *registry) lookup(h handle) (*node, error) {
	if h.idx >= uint32(len(r.nodes)) {
		return nil, ErrNodeRemoved
	}
	slot := &r.nodes[h.idx]
	if !slot.alive || slot.gen != h.gen {
		return nil, ErrNodeRemoved
	}
	return slot, nil
}

// at resolves a handle that the caller has already validated.
func (r *registry) at(h handle) *node {
	return &r.nodes[h.idx]
}

func (r *registry) addEdge(src, dst handle) {
	r.at(src).subs.Add(dst)
	r.at(dst).deps.Add(src)
}

// rewireDeps replaces d's dependency set with reads, unsubscribing from
// sources that were not read this pass and subscribing to new ones.
func (r *registry) rewireDeps(d handle, reads []handle) {
	slot := r.at(d)
	next := mapset.NewThreadUnsafeSet[handle](reads...)

	var stale []handle
	slot.deps.Each(func(old handle) bool {
		if !next.Contains(old) {
			stale = append(stale, old)
		}
		return false
	})
	for _, old := range stale {
		slot.deps.Remove(old)
		r.at(old).subs.Remove(d)
	}
	for _, src := range reads {
		if !slot.deps.Contains(src) {
			slot.deps.Add(src)
			r.at(src).subs.Add(d)
		}
	}
}

// removeNode vacates a slot and prunes its edges from both sides.
func (r *registry) removeNode(h handle) {
	slot := r.at(h)

	var deps, subs []handle
	slot.deps.Each(func(d handle) bool {
		deps = append(deps, d)
		return false
	})
	slot.subs.Each(func(s handle) bool {
		subs = append(subs, s)
		return false
	})
	for _, d := range deps {
		r.at(d).subs.Remove(h)
	}
	for _, s := range subs {
		r.at(s).deps.Remove(h)
	}

	slot.alive = false
	slot.gen++
	slot.borrow = borrowFree
	slot.deps = nil
	slot.subs = nil
	slot.box = nil
	r.free = append(r.free, h.idx)
}

// removeAll vacates every live slot, keeping the arena so stale handles
// keep failing lookup after the slots are reused.
func (r *registry) removeAll() {
	for idx := range r.nodes {
		if r.nodes[idx].alive {
			r.removeNode(handle{idx: uint32(idx), gen: r.nodes[idx].gen})
		}
	}
}

func (r *registry) anyBorrowed() bool {
	for idx := range r.nodes {
		if r.nodes[idx].alive && r.nodes[idx].borrow != borrowFree {
			return true
		}
	}
	return false
}

// reachesUpstream reports whether needle can be reached from start by
// walking dependency edges. Used to refuse edges that would close a
// cycle: a derivation may not depend on a node that already depends on
// it.
func (r *registry) reachesUpstream(start, needle handle) bool {
	if start == needle {
		return true
	}
	seen := mapset.NewThreadUnsafeSet[handle]()
	stack := []handle{start}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == needle {
			return true
		}
		if seen.Contains(h) {
			continue
		}
		seen.Add(h)
		slot, err := r.lookup(h)
		if err != nil {
			continue
		}
		slot.deps.Each(func(d handle) bool {
			stack = append(stack, d)
			return false
		})
	}
	return false
}

func (r *registry) stats() Stats {
	var s Stats
	for idx := range r.nodes {
		slot := &r.nodes[idx]
		if !slot.alive {
			continue
		}
		switch slot.kind {
		case kindObservable:
			s.Observables++
		case kindDerivation:
			s.Derivations++
		}
		s.Edges += slot.deps.Cardinality()
	}
	return s
}

// fingerprint hashes the live topology in canonical order: slot index,
// generation, kind, then sorted dependency handles. Values and borrow
// state are excluded, so the digest only moves when the graph's shape
// does.
func (r *registry) fingerprint() uint64 {
	d := xxhash.New()
	var buf [9]byte
	for idx := range r.nodes {
		slot := &r.nodes[idx]
		if !slot.alive {
			continue
		}
		binary.LittleEndian.PutUint32(buf[:4], uint32(idx))
		binary.LittleEndian.PutUint32(buf[4:8], slot.gen)
		buf[8] = byte(slot.kind)
		d.Write(buf[:])

		deps := slot.deps.ToSlice()
		sort.Slice(deps, func(i, j int) bool {
			if deps[i].idx != deps[j].idx {
				return deps[i].idx < deps[j].idx
			}
			return deps[i].gen < deps[j].gen
		})
		for _, dep := range deps {
			binary.LittleEndian.PutUint32(buf[:4], dep.idx)
			binary.LittleEndian.PutUint32(buf[4:8], dep.gen)
			d.Write(buf[:8])
		}
	}
	return d.Sum64()
}
