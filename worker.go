package evfsm // import "github.com/orkestr8/evfsm"

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// StepResult is the outcome of one FSM interpreter step (spec.md §4.2).
type StepResult int

const (
	// Transitioned means the matched transition fired: exit action of
	// the old state ran, the cursor moved, and the entry action of the
	// new state ran.
	Transitioned StepResult = iota
	// Blocked means a transition matched but its guard returned false;
	// the event was discarded and the state is unchanged.
	Blocked
	// NoMatch means no transition exists for (current state, event);
	// the event was silently discarded.
	NoMatch
)

func (r StepResult) String() string {
	switch r {
	case Transitioned:
		return "Transitioned"
	case Blocked:
		return "Blocked"
	case NoMatch:
		return "NoMatch"
	default:
		return "Unknown"
	}
}

// Worker is a thread (goroutine) owning exactly one queue and one FSM
// instance (spec.md §3/§4.5): "Worker - a thread owning one queue + one
// FSM instance + identity (name, id)." It is the generalization of the
// teacher's instance type, which represented one member of a shared
// instance pool driven by a single runner goroutine; here every Worker
// drives itself.
type Worker struct {
	id   string
	name string

	spec *Spec
	rt   *Runtime

	queue *Queue

	state atomic.Int64 // Index, read lock-free from any goroutine

	exitRequested atomic.Bool
	done          chan struct{} // closed when the worker's loop returns

	log Logger
}

// ID returns the worker's unique id, a UUID generated at Register time.
func (w *Worker) ID() string { return w.id }

// Name returns the worker's stable, human-assigned name.
func (w *Worker) Name() string { return w.name }

// State returns the worker's current state index. Safe to call from any
// goroutine: the cursor is only ever written by the owning worker
// goroutine, via an atomic store, so this is a lock-free snapshot read
// (spec.md §3, "current-state always points into its own table; mutated
// only by owning worker").
func (w *Worker) State() Index {
	return Index(w.state.Load())
}

// StateName returns the friendly name of the worker's current state.
func (w *Worker) StateName() string {
	return w.spec.stateName(w.State())
}

// Runtime returns the Runtime this worker is registered with, so an
// Action or Guard can broadcast, arm timers, or look up sibling workers.
func (w *Worker) Runtime() *Runtime { return w.rt }

// CanReceive reports whether the worker's current state has a matching
// transition for the given event (spec.md §4's FSM interface parity).
func (w *Worker) CanReceive(e Event) bool {
	_, err := w.spec.transition(w.State(), e)
	return err == nil
}

// ExitWorker requests that this worker's loop end once the in-flight
// step() returns (spec.md §4.2, "Termination"). Safe to call from
// within an entry action; must not be called from outside the worker's
// own goroutine, since it expresses "I am done", not "stop that other
// worker" (use Runtime.Broadcast(Done) plus the FSM's own table-driven
// routing for that).
func (w *Worker) ExitWorker() {
	w.exitRequested.Store(true)
}

func (w *Worker) setState(i Index) {
	w.state.Store(int64(i))
}

// enqueue places e onto this worker's own queue. It is how
// Runtime.Broadcast delivers an event, and it is what makes
// self-delivery (spec.md §4.4) uniform: a worker broadcasting from
// inside its own action enqueues to itself exactly like it does to every
// other worker.
func (w *Worker) enqueue(e Event) error {
	return w.queue.Enqueue(e)
}

// runInitial executes the entry action of the initial state before the
// worker ever dequeues an event (spec.md §4.2, "Init" - "this is how
// timers are first armed").
func (w *Worker) runInitial(initial Index) {
	st, err := w.spec.state(initial)
	if err != nil {
		w.log.Error("unknown initial state", "worker", w.name, "state", initial, "err", err)
		return
	}
	w.setState(initial)
	if st.Entry != nil {
		if err := st.Entry(w); err != nil {
			w.log.Error("initial entry action failed", "worker", w.name, "state", w.spec.stateName(initial), "err", err)
		}
	}
}

// loop is the worker's single goroutine body (spec.md §4.5):
//
//	initialize: run entry-action of initial state
//	loop:
//	    E := queue.dequeue()
//	    step(fsm_instance, E)
//	    if terminal-exit-requested: break
//	join-safe: thread returns
//
// It returns nil on an orderly Done-driven exit or a closed queue, never
// wraps the underlying Action/Guard errors (those are logged at the
// point they occur, per spec.md §7's benign-condition policy), so
// errgroup.Group.Wait() only ever reports something genuinely
// unexpected (a worker panic, recovered and turned into an error by
// Runtime.Register's goroutine wrapper).
func (w *Worker) loop() error {
	defer close(w.done)

	for {
		e, err := w.queue.Dequeue()
		if err != nil {
			return nil
		}

		w.step(e)

		if w.exitRequested.Load() {
			return nil
		}
	}
}

// step implements the FSM interpreter contract of spec.md §4.2.
func (w *Worker) step(e Event) StepResult {
	current := w.State()

	t, err := w.spec.transition(current, e)
	if err != nil {
		w.logTrace(DebugEvents, "no-match", current, e, current)
		return NoMatch
	}

	if t.Guard != nil && !t.Guard(w) {
		w.logTrace(DebugTransitions, "guard-blocked", current, e, current)
		if w.rt != nil {
			w.rt.metrics.incBlocked()
		}
		return Blocked
	}

	fromState, _ := w.spec.state(current)
	toState, _ := w.spec.state(t.To)

	if fromState.Exit != nil {
		if err := fromState.Exit(w); err != nil {
			w.log.Error("exit action failed", "worker", w.name, "state", w.spec.stateName(current), "err", err)
		}
	}

	w.setState(t.To)

	w.logTrace(DebugTransitions, "transition", current, e, t.To)

	if w.rt != nil {
		w.rt.metrics.incTransition()
	}

	if toState.Entry != nil {
		if err := toState.Entry(w); err != nil {
			w.log.Error("entry action failed", "worker", w.name, "state", w.spec.stateName(t.To), "err", err)
		}
	}

	return Transitioned
}

func (w *Worker) logTrace(bit DebugBit, what string, from Index, e Event, to Index) {
	if w.rt != nil && !w.rt.debugEnabled(bit) {
		return
	}
	w.log.Debug(what,
		"worker", w.name,
		"from", w.spec.stateName(from),
		"event", w.spec.eventName(e),
		"to", w.spec.stateName(to))
}

// newWorkerID returns a fresh UUID string, used by Register for every
// worker id and for the name when none is given (SPEC_FULL.md §11,
// google/uuid).
func newWorkerID() string {
	return uuid.NewString()
}
