package hook

import (
	"fmt"
	"runtime/debug"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// EmitFunc is the logging surface the bridge forwards into. The
// immediate flag requests an out-of-cycle flush.
type EmitFunc func(level, message string, fields core.Fields, immediate bool)

// Capture selects one process-level event source and the extra fields
// attached to everything it reports.
type Capture struct {
	Enabled bool
	Fields  core.Fields
}

// On enables a source with no extra fields.
func On() Capture {
	return Capture{Enabled: true}
}

// OnWith enables a source with extra fields merged into each report.
func OnWith(fields core.Fields) Capture {
	return Capture{Enabled: true, Fields: fields}
}

// Options toggles the four process-level sources independently.
type Options struct {
	Panic   Capture // unrecovered panics
	Failure Capture // background goroutine errors
	Warning Capture // process warnings
	Exit    Capture // process termination
}

// Bridge converts process-level events into log events on a single
// client instance. Construct one per process through the client's
// HandleGlobalEvents; repeated construction must be prevented by the
// caller.
type Bridge struct {
	emit   EmitFunc
	opts   Options
	logger *log.Logger
}

// NewBridge wires the enabled sources to emit.
func NewBridge(emit EmitFunc, opts Options, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Bridge{
		emit:   emit,
		opts:   opts,
		logger: logger,
	}
}

// Panic reports an unrecovered panic value and its stack as a fatal
// event flushed immediately.
func (b *Bridge) Panic(recovered any, stack []byte) {
	if !b.opts.Panic.Enabled {
		return
	}
	fields := core.CloneFields(b.opts.Panic.Fields)
	fields[core.FieldCode] = "panic"
	if len(stack) > 0 {
		fields[core.FieldDetails] = string(stack)
	}
	b.emit("fatal", fmt.Sprint(recovered), fields, true)
}

// Failure reports a background goroutine error, flushed immediately.
func (b *Bridge) Failure(err error) {
	if !b.opts.Failure.Enabled || err == nil {
		return
	}
	fields := core.CloneFields(b.opts.Failure.Fields)
	b.emit("error", err.Error(), fields, true)
}

// Warning reports a process warning through the normal flush cycle.
func (b *Bridge) Warning(message string) {
	if !b.opts.Warning.Enabled {
		return
	}
	fields := core.CloneFields(b.opts.Warning.Fields)
	b.emit("warn", message, fields, false)
}

// Exit reports impending process termination, flushed immediately.
func (b *Bridge) Exit(code int) {
	if !b.opts.Exit.Enabled {
		return
	}
	fields := core.CloneFields(b.opts.Exit.Fields)
	fields[core.FieldCode] = code
	b.emit("info", fmt.Sprintf("Application stops with exit code %d", code), fields, true)
}

// Recover is a deferred helper that converts a panic on the current
// goroutine into a Panic report. The panic is swallowed; with
// exit-on-fatal enabled the report itself terminates the process.
func (b *Bridge) Recover() {
	if r := recover(); r != nil {
		b.Panic(r, debug.Stack())
	}
}

// Go runs fn on a new goroutine, reporting a returned error as a
// Failure and a panic as a Panic.
func (b *Bridge) Go(fn func() error) {
	go func() {
		defer b.Recover()
		if err := fn(); err != nil {
			b.Failure(err)
		}
	}()
}
