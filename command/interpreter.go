// Package command implements the external command interpreter contract
// of spec.md §6: a small line-oriented language for driving a Runtime
// interactively or from a script file. It is explicitly out of the
// "core" per spec.md, but specified precisely enough to be testable,
// and is grounded on the same line-tokenizing style the teacher's
// examples/simple.go used for its HTTP query parameters, generalized to
// a stdin/script command loop.
package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/orkestr8/evfsm"
)

// Vocabulary names the events the `g` (Init) and `b` (Button) tokens
// broadcast, plus the workload's Done event; Execute itself never
// broadcasts Done (`x`/`q` only set ShutdownRequested). eN tokens
// address the rest of the vocabulary by raw integer value; tN tokens
// name a timer id, not an event.
type Vocabulary struct {
	Init   evfsm.Event
	Button evfsm.Event
	Done   evfsm.Event
}

// Interpreter executes one line of the spec.md §6 command language
// against a Runtime and its TimerService.
type Interpreter struct {
	RT     *evfsm.Runtime
	Timers *evfsm.TimerService
	Vocab  Vocabulary

	Out io.Writer

	// TickDuration is what one unit of `n N` sleeps for.
	TickDuration time.Duration

	// ReadScript loads a named script file's lines, used by the `r`
	// token. Left nil, `r` reports an error instead of reading disk -
	// callers that never script need not wire a filesystem at all.
	ReadScript func(path string) ([]string, error)

	shutdownRequested bool
}

// sleepOpts models the two-token `n N` form via go-flags, so the sleep
// count is parsed the same principled way the rest of the command
// vocabulary's future numeric flags would be (SPEC_FULL.md §11).
type sleepOpts struct {
	Count int `short:"n" required:"true"`
}

// ShutdownRequested reports whether a prior Execute call saw `x` or
// `q`. The caller's command loop should stop reading further lines once
// this is true.
func (in *Interpreter) ShutdownRequested() bool {
	return in.shutdownRequested
}

// Execute runs one line: surrounding space is trimmed, blank lines and
// lines starting with `#` are no-ops, and the first whitespace-separated
// field selects the command.
func (in *Interpreter) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	token := fields[0]

	switch {
	case token == "g":
		in.RT.Broadcast(in.Vocab.Init)
		return nil

	case token == "b":
		in.RT.Broadcast(in.Vocab.Button)
		return nil

	case strings.HasPrefix(token, "e") && len(token) > 1:
		n, err := strconv.Atoi(token[1:])
		if err != nil {
			return fmt.Errorf("malformed event token %q: %w", token, err)
		}
		in.RT.Broadcast(evfsm.Event(n))
		return nil

	case strings.HasPrefix(token, "t") && len(token) > 1:
		id := token[1:]
		if in.Timers == nil {
			return fmt.Errorf("no timer service configured")
		}
		return in.Timers.ToggleTimer(id)

	case token == "n":
		var opts sleepOpts
		// go-flags expects "-n VALUE"; fields[1:] is ["N"], so we feed it
		// the canonical form directly rather than re-deriving one.
		if len(fields) < 2 {
			return fmt.Errorf("n requires a count, e.g. \"n 3\"")
		}
		if _, err := flags.ParseArgs(&opts, []string{"-n", fields[1]}); err != nil {
			return fmt.Errorf("malformed n token: %w", err)
		}
		time.Sleep(time.Duration(opts.Count) * in.TickDuration)
		return nil

	case token == "s":
		for _, snap := range in.RT.Show() {
			fmt.Fprintln(in.Out, snap.String())
		}
		if in.Timers != nil {
			for _, id := range in.Timers.IDs() {
				remaining, err := in.Timers.GetTimer(id)
				if err != nil {
					continue
				}
				period, _ := in.Timers.GetPeriod(id)
				fmt.Fprintf(in.Out, "timer %s remaining=%d period=%d\n", id, remaining, period)
			}
		}
		return nil

	case token == "w":
		for _, snap := range in.RT.Show() {
			fmt.Fprintf(in.Out, "%s %s\n", snap.Name, snap.StateName)
		}
		return nil

	case token == "r":
		if len(fields) < 2 {
			return fmt.Errorf("r requires a file path")
		}
		return in.runScript(fields[1])

	case token == "h":
		fmt.Fprintln(in.Out, helpText)
		return nil

	case token == "x", token == "q":
		in.shutdownRequested = true
		return nil

	default:
		fmt.Fprintf(in.Out, "unrecognized command %q, ignored\n", token)
		return nil
	}
}

func (in *Interpreter) runScript(path string) error {
	if in.ReadScript == nil {
		return fmt.Errorf("script reading not configured")
	}
	lines, err := in.ReadScript(path)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := in.Execute(l); err != nil {
			fmt.Fprintf(in.Out, "error on %q: %v\n", l, err)
		}
		if in.shutdownRequested {
			return nil
		}
	}
	return nil
}

const helpText = `commands:
  g       broadcast the init event
  b       broadcast the button event
  eN      broadcast event N
  tN      toggle timer N
  n N     sleep N ticks
  s       print a full diagnostic snapshot
  w       print the worker registry
  r FILE  read and execute a script file
  h       print this help
  x, q    request shutdown`
