package format

import (
	"fmt"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter renders one normalized event for display or transport.
type Formatter interface {
	// Format returns the rendered event with a trailing newline.
	Format(event core.Event) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a Formatter by name. Options the named formatter does
// not understand are ignored.
func New(name string, options map[string]any, logger *log.Logger) (Formatter, error) {
	if name == "" {
		name = "text"
	}

	switch name {
	case "json":
		return NewJSONFormatter(options, logger)
	case "text":
		return NewTextFormatter(options, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
