package loggy

import (
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/sink"
)

// Transport delivers events to a collector. Send ships one event,
// SendBatch one flush batch. Implementations must treat delivery as
// fire-and-forget: failures stay out of the log path.
type Transport interface {
	Send(event Event)
	SendBatch(batch []Event)
	Close()
}

// transportAdapter exposes a caller-supplied Transport to the internal
// delivery pipeline.
type transportAdapter struct {
	t Transport
}

var _ sink.Sender = transportAdapter{}

func (a transportAdapter) Send(event core.Event) {
	a.t.Send(Event(event))
}

func (a transportAdapter) SendBatch(batch []core.Event) {
	out := make([]Event, len(batch))
	for i, ev := range batch {
		out[i] = Event(ev)
	}
	a.t.SendBatch(out)
}

func (a transportAdapter) Close() {
	a.t.Close()
}
