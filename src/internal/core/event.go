package core

import "time"

// Field names recognized by the collector.
const (
	FieldTimestamp = "ts"
	FieldLevel     = "level"
	FieldMessage   = "message"
	FieldValue     = "value"
	FieldCode      = "code"
	FieldDetails   = "details"
	FieldModule    = "module"
	FieldUser      = "user"
)

// TimeLayout is the wire timestamp format: ISO-8601 UTC with
// millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Fields is a set of named event attributes.
type Fields map[string]any

// Event is a single normalized log record, a flat mapping from field
// name to value. Every event carries "ts" assigned at normalization
// time. "level" and "message" are conventional but not enforced.
type Event map[string]any

// Timestamp renders t in the wire format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Merge copies src into e, overwriting existing keys.
func (e Event) Merge(src Fields) {
	for k, v := range src {
		e[k] = v
	}
}

// Level returns the event severity label, or "" when unset or
// not a string.
func (e Event) Level() string {
	s, _ := e[FieldLevel].(string)
	return s
}

// Message returns the event message, or "" when unset or not a string.
func (e Event) Message() string {
	s, _ := e[FieldMessage].(string)
	return s
}

// Clone returns a shallow copy of e.
func (e Event) Clone() Event {
	c := make(Event, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// CloneFields returns a shallow copy of f. Nil input yields an empty,
// writable map.
func CloneFields(f Fields) Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}
