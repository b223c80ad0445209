package command

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orkestr8/evfsm"
)

const (
	evInit evfsm.Event = iota
	evButton
	evDone
)

func newTestInterpreter(t *testing.T) (*Interpreter, *evfsm.Worker) {
	t.Helper()

	states := []evfsm.State{
		{Index: 0, Name: "idle"},
		{Index: 1, Name: "pressed"},
		{Index: 2, Name: "done"},
	}
	transitions := []evfsm.Transition{
		{From: 0, Event: evInit, To: 0},
		{From: 0, Event: evButton, To: 1},
		{From: 1, Event: evButton, To: 0},
		{From: 0, Event: evDone, To: 2},
		{From: 1, Event: evDone, To: 2},
		{From: 2, Event: evDone, To: 2},
	}
	spec := evfsm.MustDefine(states, transitions)

	rt := evfsm.NewRuntime(evfsm.WithJoinTimeout(2 * time.Second))
	w := rt.MustRegister(spec, 0, evfsm.RegisterOptions{Name: "w1"})

	var out bytes.Buffer
	in := &Interpreter{
		RT:           rt,
		Timers:       rt.Timers(),
		Vocab:        Vocabulary{Init: evInit, Button: evButton, Done: evDone},
		Out:          &out,
		TickDuration: time.Millisecond,
		ReadScript:   ReadScriptFile,
	}
	return in, w
}

func TestButtonTokenBroadcastsButtonEvent(t *testing.T) {
	in, w := newTestInterpreter(t)
	require.NoError(t, in.Execute("b"))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, evfsm.Index(1), w.State())
}

func TestEventTokenBroadcastsRawEvent(t *testing.T) {
	in, w := newTestInterpreter(t)
	require.NoError(t, in.Execute("e1"))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, evfsm.Index(1), w.State())
}

func TestShutdownTokenSetsFlag(t *testing.T) {
	in, _ := newTestInterpreter(t)
	require.False(t, in.ShutdownRequested())
	require.NoError(t, in.Execute("x"))
	require.True(t, in.ShutdownRequested())
}

func TestUnknownTokenIsLoggedAndIgnored(t *testing.T) {
	in, _ := newTestInterpreter(t)
	require.NoError(t, in.Execute("zzz"))
}

func TestBlankAndCommentLinesAreNoops(t *testing.T) {
	in, _ := newTestInterpreter(t)
	require.NoError(t, in.Execute(""))
	require.NoError(t, in.Execute("   "))
	require.NoError(t, in.Execute("# a comment"))
}

func TestWorkerTokenPrintsNameAndState(t *testing.T) {
	in, _ := newTestInterpreter(t)
	require.NoError(t, in.Execute("b"))
	time.Sleep(20 * time.Millisecond)

	var out bytes.Buffer
	in.Out = &out
	require.NoError(t, in.Execute("w"))
	require.Equal(t, "w1 pressed\n", out.String())
}

func TestSnapshotTokenIncludesTimerInfo(t *testing.T) {
	in, _ := newTestInterpreter(t)
	require.NoError(t, in.Timers.CreateTimer("idle-timer", evDone))
	require.NoError(t, in.Timers.SetTimer("idle-timer", 1000))

	var out bytes.Buffer
	in.Out = &out
	require.NoError(t, in.Execute("s"))
	require.Contains(t, out.String(), "w1 state=idle")
	require.Contains(t, out.String(), "timer idle-timer remaining=1000 period=1000")
}

func TestSleepTokenParsesCount(t *testing.T) {
	in, _ := newTestInterpreter(t)
	start := time.Now()
	require.NoError(t, in.Execute("n 5"))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
