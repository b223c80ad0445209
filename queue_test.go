package evfsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Event(i)))
	}
	for i := 0; i < 5; i++ {
		e, err := q.Dequeue()
		require.NoError(t, err)
		require.Equal(t, Event(i), e)
	}
}

func TestQueueDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue()
	result := make(chan Event, 1)

	go func() {
		e, err := q.Dequeue()
		require.NoError(t, err)
		result <- e
	}()

	select {
	case <-result:
		t.Fatal("dequeue returned before any event was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Enqueue(Event(7)))

	select {
	case e := <-result:
		require.Equal(t, Event(7), e)
	case <-time.After(time.Second):
		t.Fatal("dequeue never woke up after enqueue")
	}
}

func TestQueueCloseWakesBlockedDequeue(t *testing.T) {
	q := NewQueue()
	errc := make(chan error, 1)

	go func() {
		_, err := q.Dequeue()
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrShuttingDown)
	case <-time.After(time.Second):
		t.Fatal("dequeue never woke up after close")
	}
}

func TestQueueDrainsBeforeFailingAfterClose(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Enqueue(Event(1)))
	require.NoError(t, q.Enqueue(Event(2)))
	q.Close()

	e, err := q.Dequeue()
	require.NoError(t, err)
	require.Equal(t, Event(1), e)

	e, err = q.Dequeue()
	require.NoError(t, err)
	require.Equal(t, Event(2), e)

	_, err = q.Dequeue()
	require.ErrorIs(t, err, ErrShuttingDown)
}

func TestQueueEnqueueAfterCloseFails(t *testing.T) {
	q := NewQueue()
	q.Close()
	require.ErrorIs(t, q.Enqueue(Event(1)), ErrShuttingDown)
}

func TestBoundedQueueRejectsOverCapacity(t *testing.T) {
	q := NewBoundedQueue(2)
	require.NoError(t, q.Enqueue(Event(1)))
	require.NoError(t, q.Enqueue(Event(2)))
	require.ErrorIs(t, q.Enqueue(Event(3)), ErrOutOfCapacity)
}

func TestQueueCloseIsIdempotent(t *testing.T) {
	q := NewQueue()
	q.Close()
	require.NotPanics(t, q.Close)
}
