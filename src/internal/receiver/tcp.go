package receiver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const (
	maxClientBufferSize = 10 * 1024 * 1024 // 10MB max per client
	maxLineLength       = 1 * 1024 * 1024  // 1MB max per line
)

// TCPIngest accepts newline-delimited JSON events over raw TCP, the
// counterpart of the agent's tcp transport.
type TCPIngest struct {
	host     string
	port     int
	emit     func(core.Event)
	engine   *gnet.Engine
	engineMu sync.Mutex
	wg       sync.WaitGroup
	logger   *log.Logger

	// Statistics
	totalEvents   atomic.Uint64
	invalidEvents atomic.Uint64
	activeConns   atomic.Int64
}

// NewTCPIngest creates a TCP listener feeding decoded events to emit.
func NewTCPIngest(host string, port int, emit func(core.Event), logger *log.Logger) *TCPIngest {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &TCPIngest{
		host:   host,
		port:   port,
		emit:   emit,
		logger: logger,
	}
}

func (t *TCPIngest) Start() error {
	server := &tcpIngestServer{
		ingest:  t,
		clients: make(map[gnet.Conn]*tcpIngestClient),
	}

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.logger.Info("msg", "TCP ingest server starting",
			"component", "tcp_ingest",
			"port", t.port)

		err := gnet.Run(server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			t.logger.Error("msg", "TCP ingest server failed",
				"component", "tcp_ingest",
				"port", t.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for server to start or fail
	select {
	case err := <-errChan:
		t.wg.Wait()
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (t *TCPIngest) Stop() {
	t.engineMu.Lock()
	engine := t.engine
	t.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		(*engine).Stop(ctx)
	}

	t.wg.Wait()
}

// Stats returns ingest counters.
func (t *TCPIngest) Stats() map[string]any {
	return map[string]any{
		"port":               t.port,
		"total_events":       t.totalEvents.Load(),
		"invalid_events":     t.invalidEvents.Load(),
		"active_connections": t.activeConns.Load(),
	}
}

// Represents a connected client
type tcpIngestClient struct {
	buffer bytes.Buffer
}

// Handles gnet events
type tcpIngestServer struct {
	gnet.BuiltinEventEngine
	ingest  *TCPIngest
	clients map[gnet.Conn]*tcpIngestClient
	mu      sync.RWMutex
}

func (s *tcpIngestServer) OnBoot(eng gnet.Engine) gnet.Action {
	// Store engine reference for shutdown
	s.ingest.engineMu.Lock()
	s.ingest.engine = &eng
	s.ingest.engineMu.Unlock()

	s.ingest.logger.Debug("msg", "TCP ingest server booted",
		"component", "tcp_ingest",
		"port", s.ingest.port)
	return gnet.None
}

func (s *tcpIngestServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	s.mu.Lock()
	s.clients[c] = &tcpIngestClient{}
	s.mu.Unlock()

	newCount := s.ingest.activeConns.Add(1)
	s.ingest.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_ingest",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpIngestServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	newCount := s.ingest.activeConns.Add(-1)
	s.ingest.logger.Debug("msg", "TCP connection closed",
		"component", "tcp_ingest",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount,
		"error", err)
	return gnet.None
}

func (s *tcpIngestServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	// Read all available data
	data, err := c.Next(-1)
	if err != nil {
		s.ingest.logger.Error("msg", "Error reading from connection",
			"component", "tcp_ingest",
			"error", err)
		return gnet.Close
	}

	// Check if appending the new data would exceed the client buffer limit
	if client.buffer.Len()+len(data) > maxClientBufferSize {
		s.ingest.logger.Warn("msg", "Client buffer limit exceeded, closing connection",
			"component", "tcp_ingest",
			"remote_addr", c.RemoteAddr().String(),
			"buffer_size", client.buffer.Len(),
			"incoming_size", len(data),
			"limit", maxClientBufferSize)
		s.ingest.invalidEvents.Add(1)
		return gnet.Close
	}

	client.buffer.Write(data)

	// An oversized buffer with no newline means a runaway line
	if client.buffer.Len() > maxLineLength {
		if bytes.IndexByte(client.buffer.Bytes(), '\n') < 0 {
			s.ingest.logger.Warn("msg", "Line too long without newline",
				"component", "tcp_ingest",
				"remote_addr", c.RemoteAddr().String(),
				"buffer_size", client.buffer.Len())
			s.ingest.invalidEvents.Add(1)
			return gnet.Close
		}
	}

	s.drainLines(client)

	return gnet.None
}

// drainLines processes complete lines, leaving any partial line buffered
func (s *tcpIngestServer) drainLines(client *tcpIngestClient) {
	for {
		bufBytes := client.buffer.Bytes()
		idx := bytes.IndexByte(bufBytes, '\n')
		if idx < 0 {
			return
		}

		line := bytes.TrimRight(bufBytes[:idx], "\r")
		if len(line) > 0 {
			s.processLine(line)
		}
		client.buffer.Next(idx + 1)
	}
}

func (s *tcpIngestServer) processLine(line []byte) {
	var ev core.Event
	if err := json.Unmarshal(line, &ev); err != nil {
		s.ingest.invalidEvents.Add(1)
		s.ingest.logger.Debug("msg", "Invalid JSON event",
			"component", "tcp_ingest",
			"error", err)
		return
	}
	if len(ev) == 0 {
		s.ingest.invalidEvents.Add(1)
		return
	}

	s.ingest.totalEvents.Add(1)
	s.ingest.emit(ev)
}
