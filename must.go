package evfsm // import "github.com/orkestr8/evfsm"

// MustDefine panics if Define fails. Setup-time FSM construction errors
// (duplicate state index, dangling transition, etc.) are programming
// errors, not runtime conditions - spec.md §7 treats them as fatal, and
// the teacher's own fsm.go used the same must-panic pattern for package
// initialization failures.
func MustDefine(states []State, transitions []Transition) *Spec {
	s, err := Define(states, transitions)
	if err != nil {
		panic(err)
	}
	return s
}

// MustRegister panics if Runtime.Register fails, for the same reason
// MustDefine does: a duplicate worker name or a sealed registry at
// setup time is a programming error.
func (rt *Runtime) MustRegister(spec *Spec, initial Index, opts RegisterOptions) *Worker {
	w, err := rt.Register(spec, initial, opts)
	if err != nil {
		panic(err)
	}
	return w
}
