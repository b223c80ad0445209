package evfsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepReturnsNoMatchForUnknownEvent(t *testing.T) {
	spec := MustDefine(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, To: stateRunning},
	})
	rt := NewRuntime()
	w, err := rt.Register(spec, stateIdle, RegisterOptions{Name: "w"})
	require.NoError(t, err)

	require.Equal(t, NoMatch, w.step(eventFinish))
	require.Equal(t, stateIdle, w.State())
}

func TestStepReturnsBlockedWhenGuardRejects(t *testing.T) {
	spec := MustDefine(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, Guard: func(w *Worker) bool { return false }, To: stateRunning},
	})
	rt := NewRuntime()
	w, err := rt.Register(spec, stateIdle, RegisterOptions{Name: "w"})
	require.NoError(t, err)

	require.Equal(t, Blocked, w.step(eventStart))
	require.Equal(t, stateIdle, w.State())
}

func TestStepReturnsTransitionedAndMovesCursor(t *testing.T) {
	spec := MustDefine(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, To: stateRunning},
	})
	rt := NewRuntime()
	w, err := rt.Register(spec, stateIdle, RegisterOptions{Name: "w"})
	require.NoError(t, err)

	require.Equal(t, Transitioned, w.step(eventStart))
	require.Equal(t, stateRunning, w.State())
}

func TestCanReceiveReflectsCurrentState(t *testing.T) {
	spec := MustDefine(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, To: stateRunning},
		{From: stateRunning, Event: eventFinish, To: stateDone},
	})
	rt := NewRuntime()
	w, err := rt.Register(spec, stateIdle, RegisterOptions{Name: "w"})
	require.NoError(t, err)

	require.True(t, w.CanReceive(eventStart))
	require.False(t, w.CanReceive(eventFinish))

	w.step(eventStart)
	require.False(t, w.CanReceive(eventStart))
	require.True(t, w.CanReceive(eventFinish))
}
