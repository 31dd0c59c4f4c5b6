package orrery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaSlotReuse(t *testing.T) {
	rt := New(nil)
	defer rt.Close()

	a, err := Observable(rt, 1)
	require.NoError(t, err)
	first := a.h
	require.NoError(t, rt.Remove(a))

	// the slot comes back with a fresh generation
	b, err := Observable(rt, 2)
	require.NoError(t, err)
	assert.Equal(t, first.idx, b.h.idx)
	assert.NotEqual(t, first.gen, b.h.gen)

	_, err = rt.reg.lookup(first)
	assert.ErrorIs(t, err, ErrNodeRemoved)

	n, err := rt.reg.lookup(b.h)
	require.NoError(t, err)
	assert.Equal(t, kindObservable, n.kind)
}

func TestRewireDropsStaleEdges(t *testing.T) {
	rt := New(nil)
	defer rt.Close()

	useA, err := Observable(rt, true)
	require.NoError(t, err)
	a, err := Observable(rt, 1)
	require.NoError(t, err)
	b, err := Observable(rt, 2)
	require.NoError(t, err)

	pick, err := Derivation(rt, func() (int, error) {
		use, err := useA.Get()
		if err != nil {
			return 0, err
		}
		if use {
			return a.Get()
		}
		return b.Get()
	})
	require.NoError(t, err)

	deps := rt.reg.at(pick.h).deps
	assert.True(t, deps.Contains(useA.h))
	assert.True(t, deps.Contains(a.h))
	assert.False(t, deps.Contains(b.h))
	assert.True(t, rt.reg.at(a.h).subs.Contains(pick.h))

	require.NoError(t, useA.Write(false))

	deps = rt.reg.at(pick.h).deps
	assert.True(t, deps.Contains(useA.h))
	assert.False(t, deps.Contains(a.h))
	assert.True(t, deps.Contains(b.h))

	// both sides of the stale edge are gone
	assert.False(t, rt.reg.at(a.h).subs.Contains(pick.h))
	assert.True(t, rt.reg.at(b.h).subs.Contains(pick.h))
}

func TestRemovePrunesBothSides(t *testing.T) {
	rt := New(nil)
	defer rt.Close()

	a, err := Observable(rt, 1)
	require.NoError(t, err)
	d, err := Derivation(rt, func() (int, error) {
		return a.Get()
	})
	require.NoError(t, err)
	require.True(t, rt.reg.at(a.h).subs.Contains(d.h))

	require.NoError(t, rt.Remove(d))
	assert.Equal(t, 0, rt.reg.at(a.h).subs.Cardinality())
}

// The fingerprint canonicalizes edge sets, so the order dependencies
// were read in does not matter.
func TestFingerprintIgnoresReadOrder(t *testing.T) {
	build := func(flip bool) *Runtime {
		rt := New(nil)
		a, err := Observable(rt, 1)
		require.NoError(t, err)
		b, err := Observable(rt, 2)
		require.NoError(t, err)
		_, err = Derivation(rt, func() (int, error) {
			if flip {
				bv, err := b.Get()
				if err != nil {
					return 0, err
				}
				av, err := a.Get()
				if err != nil {
					return 0, err
				}
				return av + bv, nil
			}
			av, err := a.Get()
			if err != nil {
				return 0, err
			}
			bv, err := b.Get()
			if err != nil {
				return 0, err
			}
			return av + bv, nil
		})
		require.NoError(t, err)
		return rt
	}

	rt1 := build(false)
	defer rt1.Close()
	rt2 := build(true)
	defer rt2.Close()

	assert.Equal(t, rt1.reg.fingerprint(), rt2.reg.fingerprint())
}

func TestReachesUpstream(t *testing.T) {
	rt := New(nil)
	defer rt.Close()

	a, err := Observable(rt, 1)
	require.NoError(t, err)
	mid, err := Derivation(rt, func() (int, error) {
		return a.Get()
	})
	require.NoError(t, err)
	top, err := Derivation(rt, func() (int, error) {
		return mid.Get()
	})
	require.NoError(t, err)

	assert.True(t, rt.reg.reachesUpstream(top.h, a.h))
	assert.True(t, rt.reg.reachesUpstream(top.h, mid.h))
	assert.True(t, rt.reg.reachesUpstream(mid.h, a.h))
	assert.False(t, rt.reg.reachesUpstream(a.h, top.h))
	assert.False(t, rt.reg.reachesUpstream(mid.h, top.h))
}
