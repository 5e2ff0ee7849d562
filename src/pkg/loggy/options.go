package loggy

import (
	"io"
	"time"

	"github.com/lixenwraith/log"
)

const (
	// DefaultEndpoint is the collector URL used when none is configured.
	DefaultEndpoint = "http://127.0.0.1:1065/"

	// DefaultFlushInterval is the buffering window of a new instance.
	DefaultFlushInterval = 100 * time.Millisecond

	// DefaultBatchLimit is the buffered event count that forces a flush.
	DefaultBatchLimit = 1000
)

type options struct {
	endpoint      string
	defaults      Fields
	exitOnFatal   bool
	console       bool
	consoleW      io.Writer
	consoleFormat string
	interval      time.Duration
	limit         int
	timeout       time.Duration
	insecure      bool
	transport     Transport
	token         string
	jwtSecret     string
	jwtTTL        time.Duration
	onError       func(error)
	diag          *log.Logger
	exitFn        func(int)
}

func defaultOptions() options {
	return options{
		endpoint:      DefaultEndpoint,
		exitOnFatal:   true,
		console:       true,
		consoleFormat: "text",
		interval:      DefaultFlushInterval,
		limit:         DefaultBatchLimit,
	}
}

// Option configures a Logger instance.
type Option func(*options)

// WithEndpoint sets the collector address. http:// and https:// URLs
// select JSON delivery over HTTP; a tcp://host:port URL selects
// newline-delimited JSON over a persistent stream.
// Default: http://127.0.0.1:1065/.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithDefaults sets fields merged into every event before call
// arguments. Typical keys are "module" and "user".
func WithDefaults(fields Fields) Option {
	return func(o *options) {
		o.defaults = fields
	}
}

// WithExitOnFatal controls whether a fatal-severity event terminates
// the process after delivery. Default: true.
func WithExitOnFatal(enabled bool) Option {
	return func(o *options) {
		o.exitOnFatal = enabled
	}
}

// WithConsole controls local echo of events as they are logged.
// Default: true.
func WithConsole(enabled bool) Option {
	return func(o *options) {
		o.console = enabled
	}
}

// WithConsoleWriter redirects console echo to w. Default: os.Stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleW = w
	}
}

// WithConsoleFormat selects the console rendering, "text" or "json".
// Default: "text".
func WithConsoleFormat(name string) Option {
	return func(o *options) {
		o.consoleFormat = name
	}
}

// WithThrottleInterval sets the buffering window. Events accumulate for
// up to this long before a batch is shipped; zero or negative disables
// buffering and ships every event on its own. Default: 100ms.
func WithThrottleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.interval = interval
	}
}

// WithThrottleLimit sets the buffered event count that forces a flush
// before the window elapses. Default: 1000.
func WithThrottleLimit(limit int) Option {
	return func(o *options) {
		o.limit = limit
	}
}

// WithTimeout bounds a single delivery attempt. Default: 10s.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithInsecureTLS skips collector certificate verification on https
// endpoints.
func WithInsecureTLS() Option {
	return func(o *options) {
		o.insecure = true
	}
}

// WithTransport replaces the endpoint-derived delivery with a custom
// transport. The caller keeps ownership: Close does not close it.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithToken authenticates collector requests with a static bearer
// token. Overrides WithJWT.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithJWT authenticates collector requests with short-lived HS256
// tokens minted from the shared secret. The application identifier
// becomes the token subject. A non-positive ttl uses 5 minutes.
func WithJWT(secret string, ttl time.Duration) Option {
	return func(o *options) {
		o.jwtSecret = secret
		o.jwtTTL = ttl
	}
}

// WithOnError registers an observer for dropped deliveries. It runs on
// the delivery goroutine and must not log through the same instance.
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithDiagnostics routes the instance's own operational logging to
// logger instead of a discard logger.
func WithDiagnostics(logger *log.Logger) Option {
	return func(o *options) {
		o.diag = logger
	}
}

// WithExitFunc replaces os.Exit for fatal-severity termination.
func WithExitFunc(fn func(int)) Option {
	return func(o *options) {
		o.exitFn = fn
	}
}
