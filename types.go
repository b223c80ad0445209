package evfsm // import "github.com/orkestr8/evfsm"

// Event is a tagged discriminator drawn from a closed enumeration known at
// build time. Events carry no payload; equality is structural. This
// generalizes the teacher's Signal type to the spec's vocabulary.
type Event int

// Index is the identity of a state within a Spec. Generalizes the
// teacher's Index, kept as the same underlying type.
type Index int

// invalidState is a sentinel Index that no state uses, mirroring the
// teacher's own sentinel. Worker.State never returns it: a worker whose
// initial entry has not run yet reads as Index 0.
const invalidState Index = -99999

// IsInvalidState returns true if the index is the sentinel invalid state.
func IsInvalidState(i Index) bool {
	return i == invalidState
}

// Action runs on entry to or exit from a state (spec.md §3, State
// entity). It receives the owning Worker so it can broadcast events, arm
// timers, or request its own exit (spec.md §4.2, §4.6's "capability"
// design note). Unlike the teacher, where an Action is keyed by
// (state, signal) and failure diverts to an Errors table, spec.md ties
// Action to state entry/exit only; a returned error is logged and
// otherwise does not alter the transition that already happened.
type Action func(w *Worker) error

// Guard is a side-effect-free predicate gating a transition (spec.md
// §4.6). Returning false means "discard the event, stay in the current
// state" and is not itself an error. Guards must not mutate FSM state.
type Guard func(w *Worker) bool

// Transition is an immutable record (from, event, optional guard, to)
// per spec.md §3/§4.2. For a given (From, Event) pair at most one
// Transition may exist in a Spec - enforced at build time.
type Transition struct {
	From  Index
	Event Event
	Guard Guard
	To    Index
}

// State is an immutable record of a name plus optional entry/exit
// actions (spec.md §3).
type State struct {
	Index Index
	Name  string
	Entry Action
	Exit  Action
}

// Logger is the capability used throughout the runtime to emit
// diagnostic traces. Its shape - three methods taking a message plus
// key-value varargs - is carried over unchanged from the teacher so any
// structured backend can be adapted to it without touching call sites.
type Logger interface {
	Debug(string, ...interface{})
	Error(string, ...interface{})
	Info(string, ...interface{})
}

// DebugBit names one bit of the debug_flags bitmask (spec.md §5, §6
// "-d <hex>").
type DebugBit uint32

// Recognized debug bits, matching spec.md §6 exactly.
const (
	DebugTransitions DebugBit = 0x01
	DebugEvents      DebugBit = 0x02
	DebugTimers      DebugBit = 0x04
	DebugLifecycle   DebugBit = 0x10
	DebugVerbose     DebugBit = 0x20
)

const (
	// defaultQueueCapacity is the soft cap applied to a worker's event
	// queue before Enqueue starts returning ErrOutOfCapacity. Zero means
	// unbounded, which is the default (spec.md §4.1 is an unbounded
	// FIFO; the cap exists only so OutOfCapacity is reachable at all).
	defaultQueueCapacity = 0

	// defaultTimerWakeIntervalMS is the multiplexed wait bound from
	// spec.md §4.3 ("a bounded timeout (≤200 ms) to allow cooperative
	// cancellation").
	defaultTimerWakeIntervalMS = 200

	// defaultJoinTimeoutMS bounds Runtime.JoinAll, resolving the first
	// Open Question of spec.md §9: an FSM table that never reaches a
	// terminal exit_worker() call after Done is a user bug, and JoinAll
	// must say so instead of hanging the process forever.
	defaultJoinTimeoutMS = 5000
)
