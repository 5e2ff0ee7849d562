package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/denull/loggy-agent/src/internal/auth"
	"github.com/denull/loggy-agent/src/internal/config"
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// Server is a development collector. It accepts the batches an agent
// ships via POST /log/<app> and prints them to the console.
type Server struct {
	cfg       config.ListenConfig
	server    *fasthttp.Server
	verifier  *auth.Verifier
	limiter   *IPLimiter
	formatter format.Formatter
	tcp       *TCPIngest
	out       io.Writer
	printMu   sync.Mutex
	wg        sync.WaitGroup
	logger    *log.Logger

	// Statistics
	totalEvents     atomic.Uint64
	totalBatches    atomic.Uint64
	invalidRequests atomic.Uint64
	rateLimited     atomic.Uint64
	startTime       time.Time
	lastEventTime   atomic.Value // time.Time
}

// New creates a development collector from the listen configuration.
// Received events are written to out, os.Stdout when nil.
func New(cfg config.ListenConfig, out io.Writer, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if out == nil {
		out = os.Stdout
	}

	formatter, err := format.New(cfg.Format, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("listen formatter: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		formatter: formatter,
		out:       out,
		verifier: auth.NewVerifier(auth.VerifierConfig{
			Tokens:      cfg.Tokens,
			TokenHashes: cfg.TokenHashes,
			JWTSecret:   cfg.JWTSecret,
		}, logger),
		limiter:   NewIPLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst),
		startTime: time.Now(),
		logger:    logger,
	}
	s.lastEventTime.Store(time.Time{})

	if cfg.TCPPort > 0 {
		s.tcp = NewTCPIngest(cfg.Host, cfg.TCPPort, s.ingestTCP, logger)
	}

	return s, nil
}

// Start brings up the HTTP listener and the optional TCP ingest.
func (s *Server) Start() error {
	s.server = &fasthttp.Server{
		Handler:         s.handleRequest,
		CloseOnShutdown: true,
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("msg", "Receiver HTTP server starting",
			"component", "receiver",
			"addr", addr,
			"auth", !s.verifier.Open())

		if err := s.server.ListenAndServe(addr); err != nil {
			s.logger.Error("msg", "Receiver HTTP server failed",
				"component", "receiver",
				"addr", addr,
				"error", err)
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	if s.tcp != nil {
		if err := s.tcp.Start(); err != nil {
			return fmt.Errorf("tcp ingest: %w", err)
		}
	}

	return nil
}

// Stop shuts the listeners down and waits for them.
func (s *Server) Stop() {
	s.logger.Info("msg", "Stopping receiver", "component", "receiver")

	if s.tcp != nil {
		s.tcp.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(); err != nil {
			s.logger.Error("msg", "Error shutting down receiver server",
				"component", "receiver",
				"error", err)
		}
	}

	s.limiter.Stop()
	s.wg.Wait()

	s.logger.Info("msg", "Receiver stopped", "component", "receiver")
}

// Stats returns receiver counters.
func (s *Server) Stats() map[string]any {
	lastEvent, _ := s.lastEventTime.Load().(time.Time)
	authOK, authFail := s.verifier.Stats()

	stats := map[string]any{
		"addr":             fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		"total_events":     s.totalEvents.Load(),
		"total_batches":    s.totalBatches.Load(),
		"invalid_requests": s.invalidRequests.Load(),
		"rate_limited":     s.rateLimited.Load(),
		"auth_successes":   authOK,
		"auth_failures":    authFail,
		"uptime_seconds":   int64(time.Since(s.startTime).Seconds()),
	}
	if !lastEvent.IsZero() {
		stats["last_event_time"] = core.Timestamp(lastEvent)
	}
	if s.tcp != nil {
		stats["tcp"] = s.tcp.Stats()
	}
	return stats
}

func (s *Server) handleRequest(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	if string(ctx.Method()) == "GET" && path == "/status" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(s.Stats())
		return
	}

	app, ok := appFromPath(path)
	if !ok || string(ctx.Method()) != "POST" {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]string{
			"error": "Not Found",
			"hint":  "POST events to /log/<app>",
		})
		return
	}

	s.handleIngest(ctx, app)
}

func (s *Server) handleIngest(ctx *fasthttp.RequestCtx, app string) {
	if !s.limiter.Allow(clientIP(ctx.RemoteAddr().String())) {
		s.rateLimited.Add(1)
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]string{
			"error":       "Rate limit exceeded",
			"retry_after": "1",
		})
		return
	}

	if err := s.verifier.Authorize(string(ctx.Request.Header.Peek("Authorization"))); err != nil {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]string{
			"error": "Unauthorized",
		})
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		s.invalidRequests.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]string{
			"error": "Empty request body",
		})
		return
	}

	events, err := format.DecodeEvents(body)
	if err != nil {
		s.invalidRequests.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]string{
			"error": fmt.Sprintf("Invalid event payload: %v", err),
		})
		return
	}

	now := time.Now()
	for _, ev := range events {
		normalizeIncoming(ev, now)
	}

	s.totalBatches.Add(1)
	s.totalEvents.Add(uint64(len(events)))
	s.lastEventTime.Store(now)
	s.printEvents(app, events)

	ctx.SetStatusCode(fasthttp.StatusAccepted)
	ctx.SetContentType("application/json")
	json.NewEncoder(ctx).Encode(map[string]any{
		"accepted": len(events),
	})
}

// ingestTCP feeds events arriving over the TCP listener into the same
// print path as HTTP batches.
func (s *Server) ingestTCP(ev core.Event) {
	now := time.Now()
	normalizeIncoming(ev, now)
	s.totalEvents.Add(1)
	s.lastEventTime.Store(now)
	s.printEvents("tcp", []core.Event{ev})
}

func (s *Server) printEvents(app string, events []core.Event) {
	s.printMu.Lock()
	defer s.printMu.Unlock()

	for _, ev := range events {
		line, err := s.formatter.Format(ev)
		if err != nil {
			s.logger.Debug("msg", "Failed to render event",
				"component", "receiver",
				"error", err)
			continue
		}
		fmt.Fprintf(s.out, "[%s] %s", app, line)
	}
}

// appFromPath extracts the application name from an ingest path.
func appFromPath(path string) (string, bool) {
	app, ok := strings.CutPrefix(path, "/log/")
	if !ok || app == "" || strings.Contains(app, "/") {
		return "", false
	}
	return app, true
}

// normalizeIncoming stamps fields the agent normally supplies so
// hand-built payloads still render.
func normalizeIncoming(ev core.Event, now time.Time) {
	if _, ok := ev[core.FieldTimestamp]; !ok {
		ev[core.FieldTimestamp] = core.Timestamp(now)
	}
	if _, ok := ev[core.FieldLevel]; !ok {
		ev[core.FieldLevel] = "info"
	}
}

// clientIP strips the port from a remote address for limiter keying.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
