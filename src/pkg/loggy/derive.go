package loggy

import (
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/dispatch"
	"github.com/denull/loggy-agent/src/internal/stopwatch"
)

// WithField returns a derived Logger whose events carry the given
// default field. The derived instance shares the parent's transport and
// application identifier but owns its buffer, flush timer and
// stopwatches; throttle, exit and console settings are inherited at
// derivation time and diverge independently afterwards. Closing a
// derived instance flushes it without touching the shared transport.
func (l *Logger) WithField(name string, value any) *Logger {
	l.mu.Lock()
	defaults := core.CloneFields(l.defaults)
	exitOnFatal := l.exitOnFatal
	consoleOn := l.consoleOn
	interval := l.interval
	limit := l.limit
	l.mu.Unlock()

	defaults[name] = value

	child := &Logger{
		app:         l.app,
		transport:   l.transport,
		console:     l.console,
		timers:      stopwatch.NewRegistry(),
		logger:      l.logger,
		exitFn:      l.exitFn,
		now:         l.now,
		defaults:    defaults,
		exitOnFatal: exitOnFatal,
		consoleOn:   consoleOn,
		interval:    interval,
		limit:       limit,
	}
	child.dispatcher = dispatch.New(l.transport, interval, limit, l.logger)
	return child
}

// WithModule returns a derived Logger tagging every event with the
// module name.
func (l *Logger) WithModule(module string) *Logger {
	return l.WithField(core.FieldModule, module)
}

// WithUser returns a derived Logger tagging every event with the user
// identifier.
func (l *Logger) WithUser(user string) *Logger {
	return l.WithField(core.FieldUser, user)
}
