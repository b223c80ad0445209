package evfsm // import "github.com/orkestr8/evfsm"

import (
	"fmt"
)

// ErrDuplicateState is returned when two states in the same Spec share an
// Index.
type ErrDuplicateState struct {
	*Spec
	Index
}

func (e ErrDuplicateState) Error() string {
	return fmt.Sprintf("duplicated state index: %v", e.Spec.stateName(e.Index))
}

// ErrUnknownState indicates a state reference that does not match any
// known state index.
type ErrUnknownState struct {
	*Spec
	Index
}

func (e ErrUnknownState) Error() string {
	return fmt.Sprintf("unknown state: %v", e.Spec.stateName(e.Index))
}

// ErrDuplicateTransition is returned when two transitions in the same
// Spec share a (From, Event) pair, violating the determinism invariant
// (spec.md §8, property 1).
type ErrDuplicateTransition struct {
	spec  *Spec
	From  Index
	Event Event
}

func (e ErrDuplicateTransition) Error() string {
	return fmt.Sprintf("duplicate transition: state=%v event=%v",
		e.spec.stateName(e.From), e.spec.eventName(e.Event))
}

// ErrUnknownTransition is raised when a (state, event) pair has no
// matching transition. spec.md §4.2 calls this NoMatch and treats it as
// benign; the error value remains useful for diagnostics and tests.
type ErrUnknownTransition struct {
	spec  *Spec
	Event Event
	State Index
}

func (e ErrUnknownTransition) Error() string {
	return fmt.Sprintf("no transition: state=%v event=%v", e.spec.stateName(e.State), e.spec.eventName(e.Event))
}

// ErrGuardRejected describes a matched transition whose guard evaluated
// to false - spec.md §4.2 step 2, "Blocked". Worker.step reports that
// case through its Blocked result and does not return this error.
type ErrGuardRejected struct {
	spec  *Spec
	Event Event
	State Index
}

func (e ErrGuardRejected) Error() string {
	return fmt.Sprintf("guard rejected: state=%v event=%v", e.spec.stateName(e.State), e.spec.eventName(e.Event))
}

// ErrUnknownWorker describes a worker id or name that is not registered.
// FindByName reports a missing worker through its bool result; no
// function in this package returns this error.
type ErrUnknownWorker string

func (e ErrUnknownWorker) Error() string {
	return fmt.Sprintf("unknown worker: %v", string(e))
}

// ErrDuplicateWorker is raised when Register is called twice with the
// same worker name.
type ErrDuplicateWorker string

func (e ErrDuplicateWorker) Error() string {
	return fmt.Sprintf("duplicate worker name: %v", string(e))
}

// ErrNilAction describes a nil Action for an event. Entry and Exit
// actions are optional and a nil one is skipped; no function in this
// package returns this error.
type ErrNilAction Event

func (e ErrNilAction) Error() string {
	return fmt.Sprintf("nil action for event %d", int(e))
}

// ErrNoTransitions is raised when a Spec is built with zero transitions.
type ErrNoTransitions struct {
	StateCount int
}

func (e ErrNoTransitions) Error() string {
	return fmt.Sprintf("no transitions defined: count(states)=%d", e.StateCount)
}

// ErrShuttingDown is returned by Queue.Enqueue/Dequeue once the queue has
// been closed (spec.md §4.1, "Failure modes").
var ErrShuttingDown = fmt.Errorf("queue is shutting down")

// ErrOutOfCapacity is returned by Queue.Enqueue when a bounded queue is
// full (spec.md §4.1).
var ErrOutOfCapacity = fmt.Errorf("queue is out of capacity")

// ErrDuplicateTimer is returned by TimerService.CreateTimer when the id
// is already registered. spec.md §9's second Open Question prefers this
// non-fatal variant over aborting the process.
type ErrDuplicateTimer string

func (e ErrDuplicateTimer) Error() string {
	return fmt.Sprintf("duplicate timer id: %v", string(e))
}

// ErrUnknownTimer is returned when an operation names a timer id that was
// never created.
type ErrUnknownTimer string

func (e ErrUnknownTimer) Error() string {
	return fmt.Sprintf("unknown timer id: %v", string(e))
}

// ErrJoinTimeout is returned by Runtime.JoinAll when one or more workers
// fail to terminate within the bound - see SPEC_FULL.md §13, Open
// Question 1.
type ErrJoinTimeout struct {
	Pending []string
}

func (e ErrJoinTimeout) Error() string {
	return fmt.Sprintf("join_all timed out, %d worker(s) still running: %v", len(e.Pending), e.Pending)
}
