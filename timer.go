package evfsm // import "github.com/orkestr8/evfsm"

import (
	"sync"
	"time"
)

// timerRecord is one named timer's mutable state (spec.md §3's Timer
// entity): a period, the previous nonzero period (so a toggle can
// restore what SetTimer(id, 0) or a pause would otherwise discard),
// whether it is currently armed, and how many milliseconds remain
// until its next expiry. The invariant is periodMs == 0 iff armed ==
// false; previousPeriodMs always holds the last nonzero period seen,
// for ToggleTimer to restore.
type timerRecord struct {
	event            Event
	periodMs         int64
	previousPeriodMs int64
	remaining        int64
	armed            bool
}

// TimerServiceOptions configures a TimerService at construction.
type TimerServiceOptions struct {
	Logger       Logger
	Metrics      *Metrics
	WakeInterval time.Duration // default defaultTimerWakeIntervalMS

	// Pacing overrides the wake loop's time source with an
	// externally-driven channel, for deterministic tests: each value
	// sent on it is treated as one WakeInterval's worth of elapsed
	// time. Production callers leave this nil and get a real
	// time.Ticker.
	Pacing <-chan time.Time
}

// TimerService implements spec.md §4.3: named, periodic timers that
// broadcast an expiry event through a Runtime every time their period
// elapses, re-arming themselves automatically (periodic, not one-shot).
// It replaces the teacher's per-instance TTL/deadline-priority-queue with
// a single shared service, since the spec's timers are named and
// independent of any one worker's state rather than state-local TTLs.
//
// Internally it wakes on a fixed interval bounded at
// defaultTimerWakeIntervalMS (200ms) - spec.md §4.3: "a periodic expiry
// check, woken no less often than every 200ms, so that toggling or
// shutdown is never stalled for longer than that bound" - rather than
// scheduling one timer per record, so Shutdown can always observe and
// cancel promptly regardless of how many timers are armed.
type TimerService struct {
	mu      sync.Mutex
	timers  map[string]*timerRecord
	rt      *Runtime
	log     Logger
	metrics *Metrics

	wakeInterval time.Duration
	pacing       <-chan time.Time
	stop         chan struct{}
	stopped      bool
	wg           sync.WaitGroup
}

// NewTimerService starts the background wake loop and returns a ready
// TimerService. Normally obtained via Runtime.Timers() instead of
// calling this directly.
func NewTimerService(rt *Runtime, opts TimerServiceOptions) *TimerService {
	interval := opts.WakeInterval
	if interval <= 0 {
		interval = defaultTimerWakeIntervalMS * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = &nilLogger{}
	}

	ts := &TimerService{
		timers:       map[string]*timerRecord{},
		rt:           rt,
		log:          log,
		metrics:      opts.Metrics,
		wakeInterval: interval,
		pacing:       opts.Pacing,
		stop:         make(chan struct{}),
	}

	ts.wg.Add(1)
	go ts.run()

	return ts
}

// CreateTimer registers a new, initially disarmed timer bound to event.
// A duplicate id is a benign condition (SPEC_FULL.md §13, Open Question
// 2): it returns ErrDuplicateTimer and leaves the existing timer
// untouched, rather than aborting the caller.
func (ts *TimerService) CreateTimer(id string, event Event) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, has := ts.timers[id]; has {
		return ErrDuplicateTimer(id)
	}
	ts.timers[id] = &timerRecord{event: event}
	ts.setArmedGaugeLocked()
	return nil
}

// SetTimer sets id's period in milliseconds and (re)arms it. A period of
// zero disarms the timer - spec.md §8's "set_timer(id, 0) idempotence":
// calling it again while already disarmed is a no-op, not an error. The
// last nonzero period is retained in previousPeriodMs so a later
// ToggleTimer can re-arm at the same period.
func (ts *TimerService) SetTimer(id string, periodMs int64) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, has := ts.timers[id]
	if !has {
		return ErrUnknownTimer(id)
	}

	if periodMs <= 0 {
		t.periodMs = 0
		t.armed = false
		t.remaining = 0
	} else {
		t.periodMs = periodMs
		t.previousPeriodMs = periodMs
		t.remaining = periodMs
		t.armed = true
	}
	ts.setArmedGaugeLocked()
	return nil
}

// GetTimer returns the milliseconds remaining until id's next expiry.
func (ts *TimerService) GetTimer(id string) (int64, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, has := ts.timers[id]
	if !has {
		return 0, ErrUnknownTimer(id)
	}
	return t.remaining, nil
}

// IDs returns every currently registered timer id, in no particular
// order. Used by the command interpreter's `s` diagnostic snapshot
// (spec.md §6: "a diagnostic snapshot (workers + timers + current
// states)") to enumerate what to report GetTimer/GetPeriod for.
func (ts *TimerService) IDs() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ids := make([]string, 0, len(ts.timers))
	for id := range ts.timers {
		ids = append(ids, id)
	}
	return ids
}

// GetPeriod returns id's configured period in milliseconds.
func (ts *TimerService) GetPeriod(id string) (int64, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, has := ts.timers[id]
	if !has {
		return 0, ErrUnknownTimer(id)
	}
	return t.periodMs, nil
}

// ToggleTimer flips id between armed and disarmed. Disarming zeroes
// periodMs/remaining, saving the period to previousPeriodMs; re-arming
// restores periodMs and remaining from previousPeriodMs - the invariant
// from spec.md §3 ("period 0 iff armed=false; previous_period_ms
// records the last nonzero period for toggle") applies throughout, so
// GetTimer/GetPeriod always report 0 the instant a timer is disarmed,
// never a stale nonzero value.
func (ts *TimerService) ToggleTimer(id string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, has := ts.timers[id]
	if !has {
		return ErrUnknownTimer(id)
	}

	if t.armed {
		t.previousPeriodMs = t.periodMs
		t.periodMs = 0
		t.remaining = 0
		t.armed = false
	} else {
		if t.previousPeriodMs <= 0 {
			return nil
		}
		t.periodMs = t.previousPeriodMs
		t.remaining = t.previousPeriodMs
		t.armed = true
	}
	ts.setArmedGaugeLocked()
	return nil
}

func (ts *TimerService) setArmedGaugeLocked() {
	if ts.metrics == nil {
		return
	}
	n := 0
	for _, t := range ts.timers {
		if t.armed {
			n++
		}
	}
	ts.metrics.setTimersArmed(n)
}

// run is the multiplexed wake loop: every wakeInterval it decrements
// every armed timer's remaining count by the elapsed interval, and
// broadcasts the expiry event - then re-arms - for any timer that has
// reached zero.
func (ts *TimerService) run() {
	defer ts.wg.Done()

	elapsedMs := ts.wakeInterval.Milliseconds()

	source := ts.pacing
	if source == nil {
		ticker := time.NewTicker(ts.wakeInterval)
		defer ticker.Stop()
		source = ticker.C
	}

	for {
		select {
		case <-ts.stop:
			return
		case _, open := <-source:
			if !open {
				return
			}
			ts.tick(elapsedMs)
		}
	}
}

func (ts *TimerService) tick(elapsedMs int64) {
	var expired []*timerRecord

	ts.mu.Lock()
	for _, t := range ts.timers {
		if !t.armed {
			continue
		}
		t.remaining -= elapsedMs
		if t.remaining <= 0 {
			expired = append(expired, t)
		}
	}
	ts.mu.Unlock()

	for _, t := range expired {
		ts.rt.Broadcast(t.event)
		if ts.metrics != nil {
			ts.metrics.incExpiry()
		}

		ts.mu.Lock()
		if t.armed && t.periodMs > 0 {
			t.remaining += t.periodMs
			if t.remaining <= 0 {
				t.remaining = t.periodMs
			}
		}
		ts.mu.Unlock()
	}
}

// Shutdown stops the wake loop and discards every pending timer
// (spec.md §4.3: "on shutdown, any pending timers are discarded rather
// than fired"). Idempotent.
func (ts *TimerService) Shutdown() {
	ts.mu.Lock()
	if ts.stopped {
		ts.mu.Unlock()
		return
	}
	ts.stopped = true
	ts.mu.Unlock()

	close(ts.stop)
	ts.wg.Wait()

	ts.mu.Lock()
	ts.timers = map[string]*timerRecord{}
	ts.mu.Unlock()
}
