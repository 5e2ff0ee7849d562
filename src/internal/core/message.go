package core

// MessageKind discriminates the payload variants a log call accepts.
type MessageKind uint8

const (
	KindText MessageKind = iota
	KindError
	KindRecord
	KindGroup
)

// Message is the polymorphic payload of a log call. Exactly one of
// the variant fields is meaningful, selected by Kind. Construct values
// with the helpers below rather than filling the struct directly.
type Message struct {
	Kind   MessageKind
	Text   string
	Err    error
	Record Fields
	Group  []Message
}

// TextMessage wraps a plain string payload.
func TextMessage(s string) Message {
	return Message{Kind: KindText, Text: s}
}

// ErrorMessage wraps an error payload.
func ErrorMessage(err error) Message {
	return Message{Kind: KindError, Err: err}
}

// RecordMessage wraps a structured payload whose fields merge directly
// into the event.
func RecordMessage(f Fields) Message {
	return Message{Kind: KindRecord, Record: f}
}

// GroupMessage wraps a batch of payloads logged as independent events.
func GroupMessage(msgs ...Message) Message {
	return Message{Kind: KindGroup, Group: msgs}
}
