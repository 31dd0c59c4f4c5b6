package orrery_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/orrery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fingerprint(t *testing.T, rt *orrery.Runtime) uint64 {
	t.Helper()
	fp, err := rt.Fingerprint()
	require.NoError(t, err)
	return fp
}

func TestReadGuardBlocksWrite(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	a, err := orrery.Observable(rt, 1)
	require.NoError(t, err)
	before := fingerprint(t, rt)

	g, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Value())

	err = a.Write(2)
	assert.ErrorIs(t, err, orrery.ErrBorrowConflict)
	assert.Equal(t, 1, peekInt(t, a))
	assert.Equal(t, before, fingerprint(t, rt))

	g.Release()
	require.NoError(t, a.Write(2))
	assert.Equal(t, 2, peekInt(t, a))

	// the guard's snapshot is from acquisition time
	assert.Equal(t, 1, g.Value())
}

func TestSharedReadersThenWrite(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	a, err := orrery.Observable(rt, "x")
	require.NoError(t, err)

	g1, err := a.Read()
	require.NoError(t, err)
	g2, err := a.Read()
	require.NoError(t, err)

	assert.ErrorIs(t, a.Write("y"), orrery.ErrBorrowConflict)
	g1.Release()
	assert.ErrorIs(t, a.Write("y"), orrery.ErrBorrowConflict)
	g2.Release()
	require.NoError(t, a.Write("y"))

	// double release must not free someone else's borrow
	g3, err := a.Read()
	require.NoError(t, err)
	g1.Release()
	g1.Release()
	assert.ErrorIs(t, a.Write("z"), orrery.ErrBorrowConflict)
	g3.Release()
	require.NoError(t, a.Write("z"))
}

func TestWriteGuardExclusive(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	a, err := orrery.Observable(rt, 10)
	require.NoError(t, err)

	calls := 0
	d, err := orrery.Derivation(rt, func() (int, error) {
		calls++
		v, err := a.Get()
		if err != nil {
			return 0, err
		}
		return v * 2, nil
	})
	require.NoError(t, err)

	wg, err := a.BorrowMut()
	require.NoError(t, err)

	_, err = a.Read()
	assert.ErrorIs(t, err, orrery.ErrBorrowConflict)
	_, err = a.Peek()
	assert.ErrorIs(t, err, orrery.ErrBorrowConflict)
	assert.ErrorIs(t, a.Write(11), orrery.ErrBorrowConflict)
	_, err = a.BorrowMut()
	assert.ErrorIs(t, err, orrery.ErrBorrowConflict)

	// nothing downstream moved while the edit was in flight
	assert.Equal(t, 1, calls)

	*wg.Value() = 21
	require.NoError(t, wg.Release())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 42, peekInt(t, d))

	// release is idempotent and does not propagate twice
	require.NoError(t, wg.Release())
	assert.Equal(t, 2, calls)
}

func TestWriteInsideThunkRejected(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	a, err := orrery.Observable(rt, 1)
	require.NoError(t, err)
	other, err := orrery.Observable(rt, 5)
	require.NoError(t, err)

	var writeErr error
	_, err = orrery.Derivation(rt, func() (int, error) {
		v, err := a.Get()
		if err != nil {
			return 0, err
		}
		writeErr = other.Write(9)
		return v, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, writeErr, orrery.ErrWriteDuringRecompute)
	assert.Equal(t, 5, peekInt(t, other))

	// same rejection when the pass comes from a write
	writeErr = nil
	require.NoError(t, a.Write(2))
	assert.ErrorIs(t, writeErr, orrery.ErrWriteDuringRecompute)
	assert.Equal(t, 5, peekInt(t, other))
}

// A guard held on a derivation keeps the scheduler from committing a
// new value over it; the pass fails and can be retried after release.
func TestGuardOnDerivedBlocksPropagation(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	a, err := orrery.Observable(rt, 1)
	require.NoError(t, err)
	d, err := orrery.Derivation(rt, func() (int, error) {
		v, err := a.Get()
		if err != nil {
			return 0, err
		}
		return v + 1, nil
	})
	require.NoError(t, err)

	g, err := d.Read()
	require.NoError(t, err)

	err = a.Write(10)
	assert.ErrorIs(t, err, orrery.ErrBorrowConflict)
	assert.Equal(t, 2, g.Value())

	g.Release()
	require.NoError(t, a.Write(10))
	assert.Equal(t, 11, peekInt(t, d))
}

// Source borrows taken by a thunk are released even when the thunk
// fails, so a failed pass never wedges its inputs.
func TestThunkErrorReleasesSourceBorrows(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	errBoom := errors.New("boom")
	a, err := orrery.Observable(rt, 1)
	require.NoError(t, err)

	d, err := orrery.Derivation(rt, func() (int, error) {
		v, err := a.Get()
		if err != nil {
			return 0, err
		}
		if v > 2 {
			return 0, errBoom
		}
		return v, nil
	})
	require.NoError(t, err)

	before := fingerprint(t, rt)
	err = a.Write(5)
	assert.ErrorIs(t, err, errBoom)

	// the failed node kept its old value and edges
	assert.Equal(t, 1, peekInt(t, d))
	assert.Equal(t, before, fingerprint(t, rt))

	// a is not left borrowed by the failed run
	require.NoError(t, a.Write(2))
	assert.Equal(t, 2, peekInt(t, d))
}

// A derivation whose construction fails is rolled back entirely.
func TestFailedConstructionRollsBack(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	errBoom := errors.New("boom")
	a, err := orrery.Observable(rt, 1)
	require.NoError(t, err)
	before := fingerprint(t, rt)
	stats, err := rt.Stats()
	require.NoError(t, err)

	_, err = orrery.Derivation(rt, func() (int, error) {
		if _, err := a.Get(); err != nil {
			return 0, err
		}
		return 0, errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	after, err := rt.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats, after)
	assert.Equal(t, before, fingerprint(t, rt))

	// and the probed cell is free again
	require.NoError(t, a.Write(2))
}

// An untracked read takes the same shared borrow as a tracked one; only
// the edge registration differs.
func TestUntrackedGuardStillBorrows(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	c, err := orrery.Observable(rt, 7)
	require.NoError(t, err)

	g, err := c.ReadUntracked()
	require.NoError(t, err)
	assert.Equal(t, 7, g.Value())

	assert.ErrorIs(t, c.Write(8), orrery.ErrBorrowConflict)
	g.Release()
	require.NoError(t, c.Write(8))
	assert.Equal(t, 8, peekInt(t, c))
}
