package orrery_test

import (
	"testing"

	"github.com/delaneyj/orrery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A display name that prefers a nickname and otherwise combines the
// given names. Once a nickname is set the name cells stop being read,
// so the derivation drops its edges to them and their writes go nowhere.
//
//	firstName ─┐
//	lastName  ─┼─ displayName    (no nickname)
//	nickname  ─┘
//
//	nickname  ─── displayName    (nickname set)
func TestDisplayNameScenario(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	firstName, err := orrery.Observable(rt, "William")
	require.NoError(t, err)
	lastName, err := orrery.Observable(rt, "Riker")
	require.NoError(t, err)
	nickname, err := orrery.Observable(rt, "")
	require.NoError(t, err)

	recomputes := 0
	displayName, err := orrery.Derivation(rt, func() (string, error) {
		recomputes++
		n, err := nickname.Get()
		if err != nil {
			return "", err
		}
		if n != "" {
			return n, nil
		}
		f, err := firstName.Get()
		if err != nil {
			return "", err
		}
		l, err := lastName.Get()
		if err != nil {
			return "", err
		}
		return f + " " + l, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "William Riker", peekStr(t, displayName))
	assert.Equal(t, 1, recomputes)

	require.NoError(t, nickname.Write("Number One"))
	assert.Equal(t, "Number One", peekStr(t, displayName))
	assert.Equal(t, 2, recomputes)

	// the name cells are no longer dependencies
	require.NoError(t, lastName.Write("Something else"))
	assert.Equal(t, "Number One", peekStr(t, displayName))
	assert.Equal(t, 2, recomputes)
}

func TestFullNameScenario(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	firstName, err := orrery.Observable(rt, "William")
	require.NoError(t, err)
	lastName, err := orrery.Observable(rt, "Riker")
	require.NoError(t, err)

	fullName, err := orrery.Derivation(rt, func() (string, error) {
		f, err := firstName.Get()
		if err != nil {
			return "", err
		}
		l, err := lastName.Get()
		if err != nil {
			return "", err
		}
		return f + " " + l, nil
	})
	require.NoError(t, err)

	greeting, err := orrery.Derivation1(rt, fullName, func(name string) string {
		return "Hello, " + name + "!"
	})
	require.NoError(t, err)

	assert.Equal(t, "William Riker", peekStr(t, fullName))
	assert.Equal(t, "Hello, William Riker!", peekStr(t, greeting))

	require.NoError(t, firstName.Write("Thomas"))
	assert.Equal(t, "Thomas Riker", peekStr(t, fullName))
	assert.Equal(t, "Hello, Thomas Riker!", peekStr(t, greeting))
}

// Guards let a caller pin values across several reads and edit a cell
// in place, with the propagation happening on release.
func TestGuardWalkthrough(t *testing.T) {
	rt := orrery.New(nil)
	defer rt.Close()

	crew, err := orrery.Observable(rt, 430)
	require.NoError(t, err)
	evacuated, err := orrery.Observable(rt, 0)
	require.NoError(t, err)

	aboard, err := orrery.Derivation(rt, func() (int, error) {
		c, err := crew.Get()
		if err != nil {
			return 0, err
		}
		e, err := evacuated.Get()
		if err != nil {
			return 0, err
		}
		return c - e, nil
	})
	require.NoError(t, err)

	g, err := crew.Read()
	require.NoError(t, err)
	assert.Equal(t, 430, g.Value())

	// the guard pins the cell against edits while it is out
	assert.ErrorIs(t, crew.Write(1000), orrery.ErrBorrowConflict)
	g.Release()
	assert.Equal(t, 430, peekInt(t, crew))

	wg, err := evacuated.BorrowMut()
	require.NoError(t, err)
	*wg.Value() += 100
	require.NoError(t, wg.Release())
	assert.Equal(t, 330, peekInt(t, aboard))
}
