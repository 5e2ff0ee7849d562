package loggy

import (
	"context"

	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/hook"
	"github.com/denull/loggy-agent/src/internal/normalize"
)

// Capture selects one process-level event source and the extra fields
// attached to everything it reports.
type Capture struct {
	Enabled bool
	Fields  Fields
}

// On enables a source with no extra fields.
func On() Capture {
	return Capture{Enabled: true}
}

// OnWith enables a source with extra fields merged into each report.
func OnWith(fields Fields) Capture {
	return Capture{Enabled: true, Fields: fields}
}

// Hooks toggles the four process-level sources independently.
type Hooks struct {
	Panic   Capture // unrecovered panics
	Failure Capture // background goroutine errors
	Warning Capture // process warnings
	Exit    Capture // process termination
}

// Bridge forwards process-level events into its Logger. Obtain one
// through HandleGlobalEvents.
type Bridge struct {
	inner *hook.Bridge
}

// HandleGlobalEvents wires the enabled process-level sources to this
// instance and returns the bridge. At most one bridge exists per
// instance: repeated calls return the first one, ignoring the new
// hooks.
func (l *Logger) HandleGlobalEvents(hooks Hooks) *Bridge {
	l.bridgeMu.Lock()
	defer l.bridgeMu.Unlock()

	if l.bridge != nil {
		return l.bridge
	}

	emit := func(level, message string, fields core.Fields, immediate bool) {
		merged := core.Fields{core.FieldLevel: level}
		for k, v := range fields {
			merged[k] = v
		}
		l.emit(core.TextMessage(message), normalize.Args{Fields: merged, Immediate: immediate})
	}

	inner := hook.NewBridge(emit, hook.Options{
		Panic:   hookCapture(hooks.Panic),
		Failure: hookCapture(hooks.Failure),
		Warning: hookCapture(hooks.Warning),
		Exit:    hookCapture(hooks.Exit),
	}, l.logger)

	l.bridge = &Bridge{inner: inner}
	return l.bridge
}

func hookCapture(c Capture) hook.Capture {
	return hook.Capture{
		Enabled: c.Enabled,
		Fields:  core.Fields(c.Fields),
	}
}

// Panic reports an unrecovered panic value and its stack as a fatal
// event flushed immediately. With exit-on-fatal enabled the report
// terminates the process.
func (b *Bridge) Panic(recovered any, stack []byte) {
	b.inner.Panic(recovered, stack)
}

// Failure reports a background error as an immediate error event. Nil
// is ignored.
func (b *Bridge) Failure(err error) {
	b.inner.Failure(err)
}

// Warning reports a process warning through the normal flush cycle.
func (b *Bridge) Warning(message string) {
	b.inner.Warning(message)
}

// Exit reports impending process termination as an immediate info
// event carrying the exit code.
func (b *Bridge) Exit(code int) {
	b.inner.Exit(code)
}

// Recover is a deferred helper converting a panic on the current
// goroutine into a Panic report. The panic does not propagate.
func (b *Bridge) Recover() {
	b.inner.Recover()
}

// Go runs fn on a new goroutine, reporting a returned error as a
// Failure and a panic as a Panic.
func (b *Bridge) Go(fn func() error) {
	b.inner.Go(fn)
}

// WatchSignals reports termination signals as Exit events and SIGHUP
// as a Warning until ctx is cancelled.
func (b *Bridge) WatchSignals(ctx context.Context) {
	b.inner.WatchSignals(ctx)
}
