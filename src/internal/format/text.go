package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// DefaultTextTemplate renders events for terminal display.
const DefaultTextTemplate = "{{FmtTime .Timestamp}} [{{ToUpper .Level}}] {{.Message}}{{if .Fields}} {{.Fields}}{{end}}"

// DefaultTimestampFormat trims display timestamps to wall-clock time.
const DefaultTimestampFormat = "15:04:05.000"

// Produces human-readable text output using templates
type TextFormatter struct {
	template        *template.Template
	timestampFormat string
	logger          *log.Logger
}

// Creates a new text formatter. Recognized options: "template",
// "timestamp_format" (both string).
func NewTextFormatter(options map[string]any, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{
		timestampFormat: DefaultTimestampFormat,
		logger:          logger,
	}
	if s, ok := options["timestamp_format"].(string); ok && s != "" {
		f.timestampFormat = s
	}

	tmplStr := DefaultTextTemplate
	if s, ok := options["template"].(string); ok && s != "" {
		tmplStr = s
	}

	// Create template with helper functions
	funcMap := template.FuncMap{
		"FmtTime": func(ts string) string {
			t, err := time.Parse(core.TimeLayout, ts)
			if err != nil {
				return ts
			}
			return t.Format(f.timestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("event").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Formats the event using the template
func (f *TextFormatter) Format(event core.Event) ([]byte, error) {
	level := event.Level()
	if level == "" {
		level = "info"
	}

	data := map[string]any{
		"Timestamp": event[core.FieldTimestamp],
		"Level":     level,
		"Message":   event.Message(),
		"Fields":    renderExtraFields(event),
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		// Fallback: return a basic formatted line
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%v] [%s] %s\n",
			event[core.FieldTimestamp],
			strings.ToUpper(level),
			event.Message())
		return []byte(fallback), nil
	}

	// Ensure newline at end
	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

// Returns the formatter name
func (f *TextFormatter) Name() string {
	return "text"
}

// renderExtraFields flattens everything beyond the standard triple
// into a stable "key=value" listing.
func renderExtraFields(event core.Event) string {
	keys := make([]string, 0, len(event))
	for k := range event {
		switch k {
		case core.FieldTimestamp, core.FieldLevel, core.FieldMessage:
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, event[k])
	}
	return b.String()
}
