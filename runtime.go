package evfsm // import "github.com/orkestr8/evfsm"

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrRegistryClosed is returned by Register once the Runtime has begun
// broadcasting - spec.md §3: "[the worker registry] list may only be
// mutated during setup, before any broadcast may occur, and during
// teardown after all workers have joined."
var ErrRegistryClosed = fmt.Errorf("worker registry is sealed: broadcast has already begun")

// RuntimeOption configures a Runtime at construction time.
type RuntimeOption func(*Runtime)

// WithLogger installs the Logger used by the Runtime and by every Worker
// it registers that doesn't supply its own.
func WithLogger(l Logger) RuntimeOption {
	return func(rt *Runtime) { rt.log = l }
}

// WithMetrics attaches a Metrics sink. A nil Metrics (the default) makes
// every metrics call a no-op.
func WithMetrics(m *Metrics) RuntimeOption {
	return func(rt *Runtime) { rt.metrics = m }
}

// WithJoinTimeout overrides the bound JoinAll waits before giving up and
// reporting ErrJoinTimeout (SPEC_FULL.md §13, Open Question 1).
func WithJoinTimeout(d time.Duration) RuntimeOption {
	return func(rt *Runtime) { rt.joinTimeout = d }
}

// Runtime is the explicit, passed-around value that replaces the
// original source's process-wide global worker list (spec.md §9,
// "Global registry" design note: "Re-architect as an explicit Runtime
// value constructed in main and passed to anything that needs
// broadcast; forbid any hidden globals."). It is the Worker Registry
// (spec.md §4.4) plus the Shutdown Coordinator (spec.md §2, component
// 10).
type Runtime struct {
	mu      sync.Mutex
	workers []*Worker
	byName  map[string]*Worker
	started bool

	eg *errgroup.Group

	timersOnce sync.Once
	timers     *TimerService

	metrics     *Metrics
	joinTimeout time.Duration
	debugFlags  atomic.Uint32

	log Logger
}

// NewRuntime constructs an empty, unsealed Runtime ready for
// registration.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		byName:      map[string]*Worker{},
		eg:          &errgroup.Group{},
		joinTimeout: defaultJoinTimeoutMS * time.Millisecond,
		log:         &nilLogger{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// RegisterOptions configures one Worker at registration time.
type RegisterOptions struct {
	// Name identifies the worker for FindByName and diagnostics. If
	// empty, a UUID is generated (SPEC_FULL.md §11).
	Name string

	// StateNames/EventNames supply friendly diagnostic names, assigned
	// onto the Spec the first time it is registered (spec.go's
	// assignNames).
	StateNames map[Index]string
	EventNames map[Event]string

	// QueueCapacity bounds the worker's event queue; zero (the
	// default) means unbounded, per spec.md §4.1.
	QueueCapacity int

	// Logger overrides the Runtime's default Logger for this worker
	// only.
	Logger Logger
}

// Register spawns a new Worker with a fresh queue bound to the given
// Spec and initial state, and adds it to the registry in insertion
// order (spec.md §4.4). The worker's goroutine starts immediately: it
// runs the initial state's entry action, then blocks in its queue's
// Dequeue - this is "how timers are first armed" per spec.md §4.2.
func (rt *Runtime) Register(spec *Spec, initial Index, opts RegisterOptions) (*Worker, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.started {
		return nil, ErrRegistryClosed
	}

	name := opts.Name
	if name == "" {
		name = newWorkerID()
	}
	if _, has := rt.byName[name]; has {
		return nil, ErrDuplicateWorker(name)
	}

	spec.assignNames(opts.StateNames, opts.EventNames)

	logger := opts.Logger
	if logger == nil {
		logger = rt.log
	}

	w := &Worker{
		id:    newWorkerID(),
		name:  name,
		spec:  spec,
		rt:    rt,
		queue: NewBoundedQueue(opts.QueueCapacity),
		done:  make(chan struct{}),
		log:   logger,
	}

	rt.workers = append(rt.workers, w)
	rt.byName[name] = w

	rt.log.Info("worker registered", "worker", name, "initial", spec.stateName(initial))

	rt.eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				rt.log.Error("worker panicked", "worker", name, "panic", r)
				err = fmt.Errorf("worker %s panicked: %v", name, r)
			}
		}()
		w.runInitial(initial)
		return w.loop()
	})

	return w, nil
}

// Broadcast enqueues e into every registered worker's queue, in
// registry order (spec.md §4.4). It is not atomic across queues: one
// worker may observe e before another worker even receives it. Per
// spec.md §7, a single queue's enqueue failure is logged and does not
// stop delivery to the rest; Broadcast itself is marked as begun on its
// first call, sealing the registry per spec.md §3.
func (rt *Runtime) Broadcast(e Event) {
	rt.mu.Lock()
	if !rt.started {
		rt.started = true
	}
	workers := make([]*Worker, len(rt.workers))
	copy(workers, rt.workers)
	rt.mu.Unlock()

	rt.metrics.incBroadcast()

	for _, w := range workers {
		if err := w.enqueue(e); err != nil {
			rt.log.Error("broadcast enqueue failed", "worker", w.name, "err", err)
			continue
		}
		if rt.debugEnabled(DebugEvents) {
			rt.log.Debug("broadcast delivered", "worker", w.name, "event", w.spec.eventName(e))
		}
	}
}

// FindByName returns the worker registered under name, if any.
func (rt *Runtime) FindByName(name string) (*Worker, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	w, has := rt.byName[name]
	return w, has
}

// SelfHandle returns w itself. It completes the Worker Registry's
// lookup contract (spec.md §4.4: "find_by_name(name), self_handle()
// provide lookup") alongside FindByName: an Action already receives
// its own *Worker as an argument, so this exists only so code holding a
// *Runtime and a *Worker can express "look up myself" through the same
// Runtime-shaped API that "look up someone else" uses.
func (rt *Runtime) SelfHandle(w *Worker) *Worker {
	return w
}

// Workers returns a snapshot slice of every registered worker, in
// registration order.
func (rt *Runtime) Workers() []*Worker {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]*Worker, len(rt.workers))
	copy(out, rt.workers)
	return out
}

// Timers returns the Runtime's TimerService, creating it on first use.
// All timers created through it broadcast their expiry event via this
// same Runtime (spec.md §2, component 9).
func (rt *Runtime) Timers() *TimerService {
	rt.timersOnce.Do(func() {
		rt.timers = NewTimerService(rt, TimerServiceOptions{Logger: rt.log, Metrics: rt.metrics})
	})
	return rt.timers
}

// JoinAll joins every worker goroutine, or reports ErrJoinTimeout if the
// bound (WithJoinTimeout, default 5s) elapses first. Callers must issue
// at least one Broadcast(Done) - or otherwise cause every worker to
// reach a terminal ExitWorker() call - before calling JoinAll (spec.md
// §4.4). On a clean join the registry is unsealed so a fresh set of
// workers could be registered into the same Runtime for a subsequent
// run (spec.md §3: "during teardown after all workers have joined").
func (rt *Runtime) JoinAll() error {
	result := make(chan error, 1)
	go func() { result <- rt.eg.Wait() }()

	select {
	case err := <-result:
		rt.mu.Lock()
		rt.started = false
		rt.mu.Unlock()
		return err
	case <-time.After(rt.joinTimeout):
		rt.mu.Lock()
		pending := make([]string, 0, len(rt.workers))
		for _, w := range rt.workers {
			select {
			case <-w.done:
			default:
				pending = append(pending, w.name)
			}
		}
		rt.mu.Unlock()
		return ErrJoinTimeout{Pending: pending}
	}
}

// Shutdown is the Shutdown Coordinator of spec.md §2 (component 10): it
// broadcasts doneEvent, stops the timer service (discarding any pending
// timers per spec.md §4.3), and joins every worker.
func (rt *Runtime) Shutdown(doneEvent Event) error {
	rt.Broadcast(doneEvent)
	if rt.timers != nil {
		rt.timers.Shutdown()
	}
	return rt.JoinAll()
}

// SetDebugFlags installs the debug_flags bitmask of spec.md §5/§6.
func (rt *Runtime) SetDebugFlags(bits uint32) {
	rt.debugFlags.Store(bits)
}

func (rt *Runtime) debugEnabled(bit DebugBit) bool {
	return rt.debugFlags.Load()&uint32(bit) != 0
}
