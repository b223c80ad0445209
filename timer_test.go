package evfsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const eventExpired Event = 200

func TestTimerServiceCreateSetGet(t *testing.T) {
	rt := NewRuntime(WithJoinTimeout(time.Second))
	ts := rt.Timers()
	defer ts.Shutdown()

	require.NoError(t, ts.CreateTimer("light", eventExpired))
	require.ErrorIs(t, ts.CreateTimer("light", eventExpired), ErrDuplicateTimer("light"))

	require.NoError(t, ts.SetTimer("light", 1000))
	remaining, err := ts.GetTimer("light")
	require.NoError(t, err)
	require.Equal(t, int64(1000), remaining)

	period, err := ts.GetPeriod("light")
	require.NoError(t, err)
	require.Equal(t, int64(1000), period)

	_, err = ts.GetTimer("missing")
	require.ErrorIs(t, err, ErrUnknownTimer("missing"))
}

func TestSetTimerZeroIsIdempotentDisarm(t *testing.T) {
	rt := NewRuntime(WithJoinTimeout(time.Second))
	ts := rt.Timers()
	defer ts.Shutdown()

	require.NoError(t, ts.CreateTimer("t", eventExpired))
	require.NoError(t, ts.SetTimer("t", 0))
	require.NoError(t, ts.SetTimer("t", 0))

	remaining, err := ts.GetTimer("t")
	require.NoError(t, err)
	require.Equal(t, int64(0), remaining)
}

func TestToggleTimerRoundTrip(t *testing.T) {
	rt := NewRuntime(WithJoinTimeout(time.Second))
	ts := rt.Timers()
	defer ts.Shutdown()

	require.NoError(t, ts.CreateTimer("t", eventExpired))
	require.NoError(t, ts.SetTimer("t", 500))

	before, _ := ts.GetTimer("t")
	require.Equal(t, int64(500), before)

	// Disarming must zero both remaining and period immediately - not
	// just eventually, and regardless of how much time has elapsed.
	require.NoError(t, ts.ToggleTimer("t"))
	remaining, _ := ts.GetTimer("t")
	require.Equal(t, int64(0), remaining)
	period, _ := ts.GetPeriod("t")
	require.Equal(t, int64(0), period)

	// Re-arming restores the period from previousPeriodMs.
	require.NoError(t, ts.ToggleTimer("t"))
	after, _ := ts.GetTimer("t")
	require.Equal(t, before, after)
	period, _ = ts.GetPeriod("t")
	require.Equal(t, int64(500), period)
}

func TestTimerExpiryBroadcastsEventPeriodically(t *testing.T) {
	states := []State{
		{Index: stateIdle, Name: "idle"},
		{Index: stateRunning, Name: "running"},
	}
	spec := MustDefine(states, []Transition{
		{From: stateIdle, Event: eventExpired, To: stateRunning},
		{From: stateRunning, Event: eventExpired, To: stateIdle},
	})

	pacing := make(chan time.Time)
	rt := NewRuntime(WithJoinTimeout(time.Second))
	ts := NewTimerService(rt, TimerServiceOptions{Pacing: pacing, WakeInterval: 200 * time.Millisecond})
	defer ts.Shutdown()

	w := rt.MustRegister(spec, stateIdle, RegisterOptions{Name: "lamp"})

	require.NoError(t, ts.CreateTimer("lamp-timer", eventExpired))
	require.NoError(t, ts.SetTimer("lamp-timer", 200))

	pacing <- time.Now()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, stateRunning, w.State())

	pacing <- time.Now()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, stateIdle, w.State())
}

func TestTimerServiceShutdownDiscardsPendingTimers(t *testing.T) {
	rt := NewRuntime(WithJoinTimeout(time.Second))
	ts := rt.Timers()

	require.NoError(t, ts.CreateTimer("t", eventExpired))
	require.NoError(t, ts.SetTimer("t", 100))

	ts.Shutdown()
	require.NotPanics(t, ts.Shutdown)

	_, err := ts.GetTimer("t")
	require.ErrorIs(t, err, ErrUnknownTimer("t"))
}
