package orrery

func Derivation1[T0, O comparable](
	rt *Runtime,
	s0 Source,
	fn func(T0) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0}, func(args []any) O {
		return fn(args[0].(T0))
	})
}

func Derivation2[T0, T1, O comparable](
	rt *Runtime,
	s0, s1 Source,
	fn func(T0, T1) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1))
	})
}

func Derivation3[T0, T1, T2, O comparable](
	rt *Runtime,
	s0, s1, s2 Source,
	fn func(T0, T1, T2) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2))
	})
}

func Derivation4[T0, T1, T2, T3, O comparable](
	rt *Runtime,
	s0, s1, s2, s3 Source,
	fn func(T0, T1, T2, T3) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2, s3}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2), args[3].(T3))
	})
}

func Derivation5[T0, T1, T2, T3, T4, O comparable](
	rt *Runtime,
	s0, s1, s2, s3, s4 Source,
	fn func(T0, T1, T2, T3, T4) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2, s3, s4}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2), args[3].(T3), args[4].(T4))
	})
}

func Derivation6[T0, T1, T2, T3, T4, T5, O comparable](
	rt *Runtime,
	s0, s1, s2, s3, s4, s5 Source,
	fn func(T0, T1, T2, T3, T4, T5) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2, s3, s4, s5}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2), args[3].(T3), args[4].(T4), args[5].(T5))
	})
}

func Derivation7[T0, T1, T2, T3, T4, T5, T6, O comparable](
	rt *Runtime,
	s0, s1, s2, s3, s4, s5, s6 Source,
	fn func(T0, T1, T2, T3, T4, T5, T6) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2, s3, s4, s5, s6}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2), args[3].(T3), args[4].(T4), args[5].(T5), args[6].(T6))
	})
}

func Derivation8[T0, T1, T2, T3, T4, T5, T6, T7, O comparable](
	rt *Runtime,
	s0, s1, s2, s3, s4, s5, s6, s7 Source,
	fn func(T0, T1, T2, T3, T4, T5, T6, T7) O,
) (*Derived[O], error) {
	return newExplicit(rt, []Source{s0, s1, s2, s3, s4, s5, s6, s7}, func(args []any) O {
		return fn(args[0].(T0), args[1].(T1), args[2].(T2), args[3].(T3), args[4].(T4), args[5].(T5), args[6].(T6), args[7].(T7))
	})
}
