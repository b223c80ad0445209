package evfsm // import "github.com/orkestr8/evfsm"

import (
	"fmt"
	"strings"
)

// WorkerSnapshot is a point-in-time, read-only view of one worker, as
// produced by Runtime.Show (spec.md §6, the `w` / `s` diagnostic
// commands and SPEC_FULL.md §12.1).
type WorkerSnapshot struct {
	ID        string
	Name      string
	State     Index
	StateName string
	QueueLen  int
}

// String renders a snapshot the way the command interpreter's `s`
// output lists a worker (SPEC_FULL.md §12.1): "name state=<name> queue=<n>".
func (s WorkerSnapshot) String() string {
	return fmt.Sprintf("%s state=%s queue=%d", s.Name, s.StateName, s.QueueLen)
}

// Show returns a snapshot of every registered worker, in registration
// order - the data behind the command interpreter's `w` token.
func (rt *Runtime) Show() []WorkerSnapshot {
	workers := rt.Workers()
	out := make([]WorkerSnapshot, len(workers))
	for i, w := range workers {
		out[i] = WorkerSnapshot{
			ID:        w.ID(),
			Name:      w.Name(),
			State:     w.State(),
			StateName: w.StateName(),
			QueueLen:  w.queue.Len(),
		}
	}
	return out
}

// GoString renders the full registry the way a `s` diagnostic dump
// would: one WorkerSnapshot per line.
func (rt *Runtime) GoString() string {
	var b strings.Builder
	for _, s := range rt.Show() {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}
