package sink

import (
	"io"
	"sync"

	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/format"
)

// Console renders events to a local writer. It backs the client's
// print-to-console behavior and doubles as a development transport.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	formatter format.Formatter
}

// NewConsole creates a console sink writing formatted events to w.
func NewConsole(w io.Writer, formatter format.Formatter) *Console {
	return &Console{
		out:       w,
		formatter: formatter,
	}
}

// Echo renders one event. Render and write failures are dropped.
func (c *Console) Echo(event core.Event) {
	data, err := c.formatter.Format(event)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.out.Write(data)
	c.mu.Unlock()
}

// Send renders one event, satisfying Sender.
func (c *Console) Send(event core.Event) {
	c.Echo(event)
}

// SendBatch renders each batched event in order.
func (c *Console) SendBatch(batch []core.Event) {
	for _, ev := range batch {
		c.Echo(ev)
	}
}

// Close is a no-op.
func (c *Console) Close() {}
