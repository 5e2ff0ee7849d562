package sink

import (
	"bytes"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/format"

	"github.com/lixenwraith/log"
)

const (
	tcpInitialBackoff = time.Second
	tcpMaxBackoff     = 30 * time.Second
)

// TCP streams events to a collector as newline-delimited JSON over a
// persistent connection. The connection is dialed lazily and redialed
// with exponential backoff after failures; events arriving while the
// collector is unreachable are dropped.
type TCP struct {
	address string
	timeout time.Duration
	onError func(error)
	logger  *log.Logger

	mu          sync.Mutex
	conn        net.Conn
	backoff     time.Duration
	reconnectAt time.Time

	totalEvents  atomic.Uint64
	totalBatches atomic.Uint64
	failed       atomic.Uint64
	lastSent     atomic.Value // time.Time
}

// TCPOptions configures a TCP sender.
type TCPOptions struct {
	Address string // host:port of the collector stream listener
	Timeout time.Duration
	OnError func(error)
}

// NewTCP creates a TCP sender for the given collector address.
func NewTCP(opts TCPOptions, logger *log.Logger) (*TCP, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if opts.Address == "" {
		return nil, fmt.Errorf("tcp sender requires an address")
	}
	if _, _, err := net.SplitHostPort(opts.Address); err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", opts.Address, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t := &TCP{
		address: opts.Address,
		timeout: timeout,
		onError: opts.OnError,
		logger:  logger,
	}
	t.lastSent.Store(time.Time{})
	return t, nil
}

// Send writes a single event line.
func (t *TCP) Send(event core.Event) {
	t.totalEvents.Add(1)
	t.write([]core.Event{event})
}

// SendBatch writes one line per batched event.
func (t *TCP) SendBatch(batch []core.Event) {
	if len(batch) == 0 {
		return
	}
	t.totalEvents.Add(uint64(len(batch)))
	t.totalBatches.Add(1)
	t.write(batch)
}

// Close drops the collector connection.
func (t *TCP) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
}

// Stats returns delivery counters.
func (t *TCP) Stats() Stats {
	lastSent, _ := t.lastSent.Load().(time.Time)

	t.mu.Lock()
	connected := t.conn != nil
	t.mu.Unlock()

	return Stats{
		Type:         "tcp",
		TotalEvents:  t.totalEvents.Load(),
		TotalBatches: t.totalBatches.Load(),
		Failed:       t.failed.Load(),
		LastSent:     lastSent,
		Details: map[string]any{
			"address":   t.address,
			"connected": connected,
		},
	}
}

func (t *TCP) write(events []core.Event) {
	var buf bytes.Buffer
	for _, ev := range events {
		line, err := format.EncodeEvent(ev)
		if err != nil {
			t.fail(err)
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.connLocked()
	if err != nil {
		t.fail(err)
		return
	}

	conn.SetWriteDeadline(time.Now().Add(t.timeout))
	if _, err := conn.Write(buf.Bytes()); err != nil {
		conn.Close()
		t.conn = nil
		t.scheduleRetryLocked()
		t.fail(fmt.Errorf("write failed: %w", err))
		return
	}

	t.lastSent.Store(time.Now())
}

// connLocked returns the live connection, dialing when permitted by
// the backoff schedule. Caller must hold t.mu.
func (t *TCP) connLocked() (net.Conn, error) {
	if t.conn != nil {
		return t.conn, nil
	}
	if time.Now().Before(t.reconnectAt) {
		return nil, fmt.Errorf("collector unreachable, next dial in %s",
			time.Until(t.reconnectAt).Round(time.Millisecond))
	}

	conn, err := net.DialTimeout("tcp", t.address, t.timeout)
	if err != nil {
		t.scheduleRetryLocked()
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	t.conn = conn
	t.backoff = 0
	t.logger.Debug("msg", "Connected to collector",
		"component", "tcp_sink",
		"address", t.address)
	return conn, nil
}

func (t *TCP) scheduleRetryLocked() {
	if t.backoff == 0 {
		t.backoff = tcpInitialBackoff
	} else {
		t.backoff *= 2
		if t.backoff > tcpMaxBackoff {
			t.backoff = tcpMaxBackoff
		}
	}
	t.reconnectAt = time.Now().Add(t.backoff)
}

func (t *TCP) fail(err error) {
	t.failed.Add(1)
	t.logger.Debug("msg", "Delivery dropped",
		"component", "tcp_sink",
		"error", err)
	if t.onError != nil {
		t.onError(err)
	}
}
