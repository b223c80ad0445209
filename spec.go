package evfsm // import "github.com/orkestr8/evfsm"

import (
	"fmt"
)

// transitionKey is the lookup key for the determinism invariant of
// spec.md §3/§8: at most one transition may exist per (from, event).
type transitionKey struct {
	From  Index
	Event Event
}

// Spec is a validated, immutable finite state machine table: the states
// entity plus the transitions entity of spec.md §3, compiled once and
// then shared read-only by every Worker instance built from it. This
// plays the same role as the teacher's unexported spec type, generalized
// from (state, signal)-keyed actions/errors to the spec's
// transition-level guard plus state-level entry/exit actions.
type Spec struct {
	states      map[Index]State
	transitions map[transitionKey]Transition

	stateNames map[Index]string // optional, for diagnostics
	eventNames map[Event]string // optional, for diagnostics
}

// NewSpec returns an empty, uncompiled Spec. Most callers should use
// Define instead.
func NewSpec() *Spec {
	return &Spec{
		states:      map[Index]State{},
		transitions: map[transitionKey]Transition{},
	}
}

// Define validates a complete set of states and transitions and returns
// a compiled, read-only Spec. It is the direct analogue of the teacher's
// package-level Define, generalized to take transitions as their own
// list rather than nested inside each State.
func Define(states []State, transitions []Transition) (*Spec, error) {
	s := NewSpec()
	return s.build(states, transitions)
}

func (s *Spec) build(states []State, transitions []Transition) (*Spec, error) {
	m := map[Index]State{}
	for _, st := range states {
		if _, has := m[st.Index]; has {
			return s, ErrDuplicateState{Spec: s, Index: st.Index}
		}
		m[st.Index] = st
	}

	compiled, err := s.compile(m, transitions)
	if err != nil {
		return s, err
	}

	s.states = m
	s.transitions = compiled
	return s, nil
}

func (s *Spec) compile(states map[Index]State, transitions []Transition) (map[transitionKey]Transition, error) {
	if len(transitions) == 0 {
		return nil, ErrNoTransitions{StateCount: len(states)}
	}

	compiled := map[transitionKey]Transition{}

	for _, t := range transitions {
		if _, has := states[t.From]; !has {
			return nil, ErrUnknownState{Spec: s, Index: t.From}
		}
		if _, has := states[t.To]; !has {
			return nil, ErrUnknownState{Spec: s, Index: t.To}
		}

		key := transitionKey{From: t.From, Event: t.Event}
		if _, has := compiled[key]; has {
			return nil, ErrDuplicateTransition{spec: s, From: t.From, Event: t.Event}
		}
		compiled[key] = t
	}

	return compiled, nil
}

// stateName returns the friendly name of the state, if one was set via
// Options at Register time, else the State's own Name, else its raw
// Index.
func (s *Spec) stateName(i Index) (name string) {
	name = fmt.Sprintf("%v", i)
	if s == nil {
		return
	}
	if v, has := s.stateNames[i]; has {
		name = v
	} else if st, has := s.states[i]; has && st.Name != "" {
		name = st.Name
	}
	return
}

// eventName returns the friendly name of the event, if one was set via
// Options at Register time, else its raw int value.
func (s *Spec) eventName(e Event) (name string) {
	name = fmt.Sprintf("%v", e)
	if s == nil {
		return
	}
	if v, has := s.eventNames[e]; has {
		name = v
	}
	return
}

// assignNames installs friendly state/event names once, at setup time.
// Mirrors the teacher's pattern of stashing Options.StateNames/
// SignalNames onto the spec inside newRunner - acceptable because the
// registry (and therefore any Spec reachable from it) may only be
// mutated during setup, before the first broadcast (spec.md §3).
func (s *Spec) assignNames(stateNames map[Index]string, eventNames map[Event]string) {
	if len(stateNames) > 0 && s.stateNames == nil {
		s.stateNames = stateNames
	}
	if len(eventNames) > 0 && s.eventNames == nil {
		s.eventNames = eventNames
	}
}

// transition looks up the unique transition for (current, event). It
// returns ErrUnknownTransition if none exists - spec.md §4.2's NoMatch.
func (s *Spec) transition(current Index, event Event) (Transition, error) {
	if _, has := s.states[current]; !has {
		return Transition{}, ErrUnknownState{Spec: s, Index: current}
	}

	t, has := s.transitions[transitionKey{From: current, Event: event}]
	if !has {
		return Transition{}, ErrUnknownTransition{spec: s, Event: event, State: current}
	}
	return t, nil
}

// state returns the compiled State record for an Index.
func (s *Spec) state(i Index) (State, error) {
	st, has := s.states[i]
	if !has {
		return State{}, ErrUnknownState{Spec: s, Index: i}
	}
	return st, nil
}
