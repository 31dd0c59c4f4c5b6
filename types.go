package orrery

// Source is any graph node a derivation can read: every cell and every
// derivation implements it. The interface is sealed; the only sources
// are values created by this package.
type Source interface {
	node() handle
	runtime() *Runtime
}

// box carries a node's value behind a type-erased interface so the
// registry stays free of type parameters.
type box interface {
	valueAny() any
}

// valueBox is the typed view of a box, recovered at read time.
type valueBox[T comparable] interface {
	box
	get() T
}

// recomputable is implemented by derivation boxes.
type recomputable interface {
	recompute(rt *Runtime, h handle) (changed bool, err error)
}
