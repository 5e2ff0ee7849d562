package loggy

import (
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/denull/loggy-agent/src/internal/auth"
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/dispatch"
	"github.com/denull/loggy-agent/src/internal/format"
	"github.com/denull/loggy-agent/src/internal/normalize"
	"github.com/denull/loggy-agent/src/internal/sink"
	"github.com/denull/loggy-agent/src/internal/stopwatch"

	"github.com/lixenwraith/log"
)

// Logger aggregates events for one application and ships them to a
// collector in throttled batches. Safe for concurrent use. Create once
// per application, derive per-module or per-user instances with
// WithField and friends.
type Logger struct {
	app           string
	transport     sink.Sender
	ownsTransport bool
	console       *sink.Console
	dispatcher    *dispatch.Dispatcher
	timers        *stopwatch.Registry
	logger        *log.Logger
	exitFn        func(int)
	now           func() time.Time

	mu          sync.Mutex
	defaults    core.Fields
	exitOnFatal bool
	consoleOn   bool
	interval    time.Duration
	limit       int

	bridgeMu sync.Mutex
	bridge   *Bridge
}

// New creates a Logger for the given application identifier.
func New(app string, opts ...Option) (*Logger, error) {
	if app == "" {
		return nil, fmt.Errorf("loggy: application identifier is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	diag := o.diag
	if diag == nil {
		diag = log.NewLogger()
	}

	transport, owns, err := buildTransport(app, o, diag)
	if err != nil {
		return nil, err
	}

	formatter, err := format.New(o.consoleFormat, nil, diag)
	if err != nil {
		return nil, fmt.Errorf("loggy: %w", err)
	}
	out := o.consoleW
	if out == nil {
		out = os.Stdout
	}

	exitFn := o.exitFn
	if exitFn == nil {
		exitFn = os.Exit
	}

	l := &Logger{
		app:           app,
		transport:     transport,
		ownsTransport: owns,
		console:       sink.NewConsole(out, formatter),
		timers:        stopwatch.NewRegistry(),
		logger:        diag,
		exitFn:        exitFn,
		now:           time.Now,
		defaults:      core.CloneFields(core.Fields(o.defaults)),
		exitOnFatal:   o.exitOnFatal,
		consoleOn:     o.console,
		interval:      o.interval,
		limit:         o.limit,
	}
	l.dispatcher = dispatch.New(transport, o.interval, o.limit, diag)

	diag.Debug("msg", "Logger created",
		"component", "loggy",
		"app", app,
		"endpoint", o.endpoint)
	return l, nil
}

// buildTransport resolves the delivery path: a caller-supplied
// transport verbatim, otherwise a sender derived from the endpoint
// scheme.
func buildTransport(app string, o options, diag *log.Logger) (sink.Sender, bool, error) {
	if o.transport != nil {
		return transportAdapter{o.transport}, false, nil
	}

	u, err := url.Parse(o.endpoint)
	if err != nil {
		return nil, false, fmt.Errorf("loggy: invalid endpoint: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		var creds *auth.Credentials
		if o.token != "" {
			creds = auth.NewBearerCredentials(o.token)
		} else if o.jwtSecret != "" {
			creds = auth.NewJWTCredentials(o.jwtSecret, app, o.jwtTTL)
		}
		h, err := sink.NewHTTP(sink.HTTPOptions{
			Endpoint:           o.endpoint,
			App:                app,
			Timeout:            o.timeout,
			InsecureSkipVerify: o.insecure,
			Credentials:        creds,
			OnError:            o.onError,
		}, diag)
		if err != nil {
			return nil, false, fmt.Errorf("loggy: %w", err)
		}
		return h, true, nil

	case "tcp":
		t, err := sink.NewTCP(sink.TCPOptions{
			Address: u.Host,
			Timeout: o.timeout,
			OnError: o.onError,
		}, diag)
		if err != nil {
			return nil, false, fmt.Errorf("loggy: %w", err)
		}
		return t, true, nil

	default:
		return nil, false, fmt.Errorf("loggy: unsupported endpoint scheme: %q", u.Scheme)
	}
}

// Log records one message. Without a level argument the event carries
// no severity; use the per-severity methods or At to stamp one.
func (l *Logger) Log(msg Message, args ...Arg) {
	c := collectArgs(args)
	l.emit(msg.inner, c.normalized())
}

// At records one message at the given severity. Caller fields override
// the severity, so a level supplied through With wins.
func (l *Logger) At(level string, msg Message, args ...Arg) {
	c := collectArgs(args)
	fields := core.Fields{core.FieldLevel: level}
	if c.fields != nil {
		for k, v := range c.fields {
			fields[k] = v
		}
	} else if c.value != nil {
		fields[core.FieldValue] = *c.value
	}
	l.emit(msg.inner, normalize.Args{Fields: fields, Immediate: c.immediate})
}

// emit is the single funnel from the call surface into the pipeline:
// normalize, echo, enqueue, then terminate on fatal severity.
func (l *Logger) emit(msg core.Message, args normalize.Args) {
	l.mu.Lock()
	defaults := l.defaults
	exitOnFatal := l.exitOnFatal
	consoleOn := l.consoleOn
	l.mu.Unlock()

	results := normalize.Normalize(defaults, msg, args, l.now)

	fatal := false
	for _, r := range results {
		if consoleOn {
			l.console.Echo(r.Event)
		}
		if r.Fatal {
			fatal = true
		}
	}

	willExit := fatal && exitOnFatal
	for _, r := range results {
		l.dispatcher.Enqueue(r.Event, r.Immediate, willExit)
	}

	if willExit {
		l.exitFn(1)
	}
}

// Flush synchronously delivers everything buffered.
func (l *Logger) Flush() {
	l.dispatcher.Flush()
}

// Close flushes buffered events and releases the transport when this
// instance owns it. Derived instances and instances built with
// WithTransport leave the transport open.
func (l *Logger) Close() {
	l.Flush()
	if l.ownsTransport {
		l.transport.Close()
	}
}

// App returns the application identifier.
func (l *Logger) App() string {
	return l.app
}

// SetExitOnFatal toggles process termination on fatal-severity events.
func (l *Logger) SetExitOnFatal(enabled bool) {
	l.mu.Lock()
	l.exitOnFatal = enabled
	l.mu.Unlock()
}

// SetConsole toggles local echo.
func (l *Logger) SetConsole(enabled bool) {
	l.mu.Lock()
	l.consoleOn = enabled
	l.mu.Unlock()
}

// SetThrottle replaces the flush policy. A non-positive interval
// disables buffering.
func (l *Logger) SetThrottle(interval time.Duration, limit int) {
	l.mu.Lock()
	l.interval = interval
	l.limit = limit
	l.mu.Unlock()
	l.dispatcher.SetThrottle(interval, limit)
}
