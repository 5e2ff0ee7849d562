package loggy

import (
	"github.com/denull/loggy-agent/src/internal/core"
)

// Fields is a set of named event attributes supplied by the caller.
type Fields map[string]any

// Event is one normalized record as handed to a Transport: a flat
// mapping from field name to value, carrying at least "ts" and
// conventionally "level" and "message".
type Event map[string]any

// Level returns the event severity label, or "" when unset.
func (e Event) Level() string {
	return core.Event(e).Level()
}

// Message returns the event message, or "" when unset.
func (e Event) Message() string {
	return core.Event(e).Message()
}

// Message is the payload of a log call. Construct one with Text, Err,
// Record or Group; the zero value behaves like Text("").
type Message struct {
	inner core.Message
}

// Text wraps a plain string payload.
func Text(s string) Message {
	return Message{inner: core.TextMessage(s)}
}

// Err wraps an error payload. The emitted event carries level "error",
// a "code" derived from the error and the error text as its message;
// see ErrorCoder and ErrorDetailer for enriching it.
func Err(err error) Message {
	return Message{inner: core.ErrorMessage(err)}
}

// Record wraps a structured payload whose fields merge directly into
// the event, overriding defaults and call arguments.
func Record(fields Fields) Message {
	return Message{inner: core.RecordMessage(core.Fields(fields))}
}

// Group wraps several payloads logged as independent events sharing
// one set of call arguments.
func Group(msgs ...Message) Message {
	members := make([]core.Message, len(msgs))
	for i, m := range msgs {
		members[i] = m.inner
	}
	return Message{inner: core.GroupMessage(members...)}
}
