package evfsm // import "github.com/orkestr8/evfsm"

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional counters/gauges sink. Every method has a
// pointer-receiver nil check, so a nil *Metrics (the Runtime default)
// makes every call a no-op - callers never need a feature flag to
// decide whether to wire metrics in (SPEC_FULL.md §11).
//
// Grounded on github.com/prometheus/client_golang (Lildeebo2002-lnd/
// go.mod) - see SPEC_FULL.md §11.
type Metrics struct {
	broadcasts  prometheus.Counter
	transitions prometheus.Counter
	blocked     prometheus.Counter
	timersArmed prometheus.Gauge
	expiries    prometheus.Counter
}

// NewMetrics builds a Metrics registered against reg. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evfsm_events_broadcast_total",
			Help: "Events delivered via Runtime.Broadcast, counted once per call regardless of worker count.",
		}),
		transitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evfsm_transitions_total",
			Help: "FSM steps that matched a transition and fired.",
		}),
		blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evfsm_transitions_blocked_total",
			Help: "FSM steps that matched a transition whose guard rejected it.",
		}),
		timersArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evfsm_timers_armed",
			Help: "Timers currently armed in the TimerService.",
		}),
		expiries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evfsm_timer_expiries_total",
			Help: "Timer periods that have elapsed and broadcast their expiry event.",
		}),
	}
	reg.MustRegister(m.broadcasts, m.transitions, m.blocked, m.timersArmed, m.expiries)
	return m
}

func (m *Metrics) incBroadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) incTransition() {
	if m == nil {
		return
	}
	m.transitions.Inc()
}

func (m *Metrics) incBlocked() {
	if m == nil {
		return
	}
	m.blocked.Inc()
}

func (m *Metrics) setTimersArmed(n int) {
	if m == nil {
		return
	}
	m.timersArmed.Set(float64(n))
}

func (m *Metrics) incExpiry() {
	if m == nil {
		return
	}
	m.expiries.Inc()
}
