package sink

import (
	"time"

	"github.com/denull/loggy-agent/src/internal/core"
)

// Sender delivers normalized events to a collector. Send ships one
// event, SendBatch one flush batch. Both are fire-and-forget:
// implementations must not surface delivery failures to the log path,
// and must not block beyond their configured timeout.
type Sender interface {
	Send(event core.Event)
	SendBatch(batch []core.Event)
	Close()
}

// Stats captures delivery counters common to all senders.
type Stats struct {
	Type         string
	TotalEvents  uint64
	TotalBatches uint64
	Failed       uint64
	LastSent     time.Time
	Details      map[string]any
}
