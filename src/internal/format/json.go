package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter renders events as JSON objects, one per line unless
// pretty-printing is enabled.
type JSONFormatter struct {
	pretty bool
	logger *log.Logger
}

// NewJSONFormatter creates a JSON formatter. Recognized options:
// "pretty" (bool).
func NewJSONFormatter(options map[string]any, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		logger: logger,
	}
	if p, ok := options["pretty"].(bool); ok {
		f.pretty = p
	}
	return f, nil
}

// Format renders a single event with a trailing newline.
func (f *JSONFormatter) Format(event core.Event) ([]byte, error) {
	var result []byte
	var err error
	if f.pretty {
		result, err = json.MarshalIndent(event, "", "  ")
	} else {
		result, err = json.Marshal(event)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// EncodeEvent renders one event as a compact JSON object for the wire.
func EncodeEvent(event core.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// EncodeBatch renders a flush batch as a JSON array for the wire.
func EncodeBatch(batch []core.Event) ([]byte, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}
	return data, nil
}

// DecodeEvents parses a wire payload holding either a single event
// object or an array of them. Array elements that are not objects are
// dropped.
func DecodeEvents(payload []byte) ([]core.Event, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		events := make([]core.Event, 0, len(raw))
		for _, r := range raw {
			var ev core.Event
			if err := json.Unmarshal(r, &ev); err != nil {
				continue
			}
			events = append(events, ev)
		}
		return events, nil
	}

	var ev core.Event
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return []core.Event{ev}, nil
}
