// Package repl implements the interactive Lua prompt.
//
// The evaluator reads one line at a time and buffers lines until they form
// a complete chunk. Execution outcomes are classified by the session:
// incomplete input keeps the buffer and switches to the secondary caret, a
// bare expression is printed through dfim.inspect, and any other failure is
// reported and discarded.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/script"
)

// Carets shown while reading a new statement and while continuing one.
const (
	PrimaryCaret   = "> "
	SecondaryCaret = ">> "
)

// ErrInterrupted is returned by a LineReader when the user interrupts the
// prompt.
var ErrInterrupted = errors.New("interrupted")

// State is the evaluator state between lines.
type State int

const (
	// Reading waits for the first line of a statement.
	Reading State = iota

	// Continuing waits for more lines of an incomplete statement.
	Continuing

	// Terminal means the loop has ended.
	Terminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Reading:
		return "reading"
	case Continuing:
		return "continuing"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LineReader is a source of input lines.
type LineReader interface {
	// ReadLine shows prompt and returns the next line without its line
	// terminator. io.EOF and ErrInterrupted end the session.
	ReadLine(prompt string) (string, error)

	// AppendHistory records an accepted line.
	AppendHistory(line string)
}

// Executor runs and classifies chunks. *script.Session implements it.
type Executor interface {
	Exec(ctx context.Context, chunk string) (script.Status, error)
}

// Config holds evaluator settings.
type Config struct {
	// Banner is written to Stdout when Run starts.
	Banner string

	// Stdout receives the banner. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives error reports. Defaults to os.Stderr.
	Stderr io.Writer

	// Logger receives debug output.
	Logger zerolog.Logger
}

// Evaluator is the read-eval-print state machine.
type Evaluator struct {
	exec   Executor
	reader LineReader
	cfg    Config
	logger zerolog.Logger

	buffer []string
	state  State
}

var sentinels = map[string]bool{
	"exit": true,
	"q":    true,
	"quit": true,
}

// Banner returns the header shown when an interactive prompt starts.
func Banner() string {
	return lua.PackageName + " " + lua.PackageVersion + " (" + lua.LuaVersion + ")\n" +
		"To inspect output, prefix input with `=`, e.g.: `={foo = 'bar'}`\n" +
		"To quit, use \"exit\", \"q(uit)\", Ctrl+C, or Ctrl+D"
}

// NewEvaluator creates an evaluator reading from reader and executing
// through exec.
func NewEvaluator(exec Executor, reader LineReader, cfg Config) *Evaluator {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Evaluator{
		exec:   exec,
		reader: reader,
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "repl").Logger(),
		state:  Reading,
	}
}

// State returns the current state.
func (e *Evaluator) State() State {
	return e.state
}

// Buffer returns the lines of the pending statement.
func (e *Evaluator) Buffer() []string {
	return append([]string(nil), e.buffer...)
}

// Caret returns the prompt for the current state.
func (e *Evaluator) Caret() string {
	if e.state == Continuing {
		return SecondaryCaret
	}
	return PrimaryCaret
}

// Run reads and evaluates lines until a sentinel, an interrupt, end of
// input or context cancellation.
func (e *Evaluator) Run(ctx context.Context) error {
	if e.cfg.Banner != "" {
		fmt.Fprintln(e.cfg.Stdout, e.cfg.Banner)
	}

	for e.state != Terminal {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := e.reader.ReadLine(e.Caret())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				e.logger.Debug().Err(err).Msg("Input closed")
				e.state = Terminal
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		e.Feed(ctx, line)
	}
	return nil
}

// Feed processes one input line and returns the resulting state.
func (e *Evaluator) Feed(ctx context.Context, line string) State {
	trimmed := strings.TrimSpace(line)

	switch {
	case sentinels[trimmed]:
		e.state = Terminal
		return e.state
	case trimmed == "":
		e.reset()
		return e.state
	}

	e.reader.AppendHistory(line)

	if len(e.buffer) == 0 && strings.HasPrefix(trimmed, "=") {
		line = inspectCall(trimmed[1:])
	}
	e.buffer = append(e.buffer, line)

	chunk := strings.Join(e.buffer, "\n")
	status, err := e.exec.Exec(ctx, chunk)
	e.logger.Debug().Stringer("status", status).Int("lines", len(e.buffer)).Msg("Evaluated chunk")

	switch status {
	case script.StatusOK:
		e.reset()
	case script.StatusIncomplete:
		e.state = Continuing
	case script.StatusBareExpression:
		if retry, _ := e.exec.Exec(ctx, inspectCall(chunk)); retry != script.StatusOK {
			e.report(err)
		}
		e.reset()
	default:
		e.report(err)
		e.reset()
	}
	return e.state
}

func (e *Evaluator) reset() {
	e.buffer = e.buffer[:0]
	e.state = Reading
}

func (e *Evaluator) report(err error) {
	if err != nil {
		fmt.Fprintln(e.cfg.Stderr, err)
	}
}

// inspectCall wraps an expression so that its value is printed. The
// closing parentheses go on their own line so a trailing comment in expr
// cannot swallow them.
func inspectCall(expr string) string {
	return "print(" + script.RootModule + ".inspect(" + expr + "\n))"
}
