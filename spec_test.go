package evfsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	stateIdle Index = iota
	stateRunning
	stateDone
)

const (
	eventStart Event = iota
	eventStop
	eventFinish
)

func simpleStates() []State {
	return []State{
		{Index: stateIdle, Name: "idle"},
		{Index: stateRunning, Name: "running"},
		{Index: stateDone, Name: "done"},
	}
}

func TestDefineRejectsDuplicateState(t *testing.T) {
	_, err := Define([]State{
		{Index: stateIdle, Name: "idle"},
		{Index: stateIdle, Name: "idle-again"},
	}, []Transition{{From: stateIdle, Event: eventStart, To: stateRunning}})
	require.Error(t, err)
	require.IsType(t, ErrDuplicateState{}, err)
}

func TestDefineRejectsDanglingTransition(t *testing.T) {
	_, err := Define(simpleStates(), []Transition{
		{From: stateRunning, Event: eventStart, To: 99},
	})
	require.Error(t, err)
	require.IsType(t, ErrUnknownState{}, err)
}

func TestDefineRejectsDuplicateTransition(t *testing.T) {
	_, err := Define(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, To: stateRunning},
		{From: stateIdle, Event: eventStart, To: stateDone},
	})
	require.Error(t, err)
	require.IsType(t, ErrDuplicateTransition{}, err)
}

func TestDefineRejectsNoTransitions(t *testing.T) {
	_, err := Define(simpleStates(), nil)
	require.Error(t, err)
	require.IsType(t, ErrNoTransitions{}, err)
}

func TestTransitionLookupIsDeterministic(t *testing.T) {
	spec := MustDefine(simpleStates(), []Transition{
		{From: stateIdle, Event: eventStart, To: stateRunning},
		{From: stateRunning, Event: eventFinish, To: stateDone},
	})

	tr, err := spec.transition(stateIdle, eventStart)
	require.NoError(t, err)
	require.Equal(t, stateRunning, tr.To)

	_, err = spec.transition(stateIdle, eventFinish)
	require.Error(t, err)
	require.IsType(t, ErrUnknownTransition{}, err)
}
