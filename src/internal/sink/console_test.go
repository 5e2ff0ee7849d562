package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleEcho(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := format.NewTextFormatter(nil, newTestLogger())
	require.NoError(t, err)
	c := NewConsole(&buf, formatter)

	c.Echo(core.Event{
		"ts":      "2025-03-14T09:26:53.589Z",
		"level":   "warn",
		"message": "cache miss",
	})

	out := buf.String()
	assert.Contains(t, out, "[WARN] cache miss")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestConsoleSenderOrder(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := format.NewJSONFormatter(nil, newTestLogger())
	require.NoError(t, err)
	c := NewConsole(&buf, formatter)

	c.Send(core.Event{"message": "one"})
	c.SendBatch([]core.Event{
		{"message": "two"},
		{"message": "three"},
	})
	c.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "one")
	assert.Contains(t, lines[1], "two")
	assert.Contains(t, lines[2], "three")
}

func TestConsoleDropsUnrenderableEvent(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := format.NewJSONFormatter(nil, newTestLogger())
	require.NoError(t, err)
	c := NewConsole(&buf, formatter)

	c.Echo(core.Event{"bad": func() {}})
	assert.Empty(t, buf.String())
}
