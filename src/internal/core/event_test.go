package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp(t *testing.T) {
	t.Run("formats UTC with millisecond precision", func(t *testing.T) {
		ts := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
		assert.Equal(t, "2025-03-14T09:26:53.589Z", Timestamp(ts))
	})

	t.Run("converts local time to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*3600)
		ts := time.Date(2025, 3, 14, 12, 0, 0, 0, loc)
		assert.Equal(t, "2025-03-14T09:00:00.000Z", Timestamp(ts))
	})

	t.Run("truncates sub-millisecond digits", func(t *testing.T) {
		ts := time.Date(2025, 1, 1, 0, 0, 0, 123_456_789, time.UTC)
		assert.Equal(t, "2025-01-01T00:00:00.123Z", Timestamp(ts))
	})
}

func TestEventMerge(t *testing.T) {
	ev := Event{"level": "info", "message": "original"}
	ev.Merge(Fields{"message": "replaced", "module": "billing"})

	assert.Equal(t, "replaced", ev["message"])
	assert.Equal(t, "billing", ev["module"])
	assert.Equal(t, "info", ev["level"])

	// Nil source is a no-op
	ev.Merge(nil)
	assert.Len(t, ev, 3)
}

func TestEventAccessors(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		wantLevel   string
		wantMessage string
	}{
		{
			name:        "string values",
			event:       Event{"level": "warn", "message": "disk full"},
			wantLevel:   "warn",
			wantMessage: "disk full",
		},
		{
			name:        "missing keys",
			event:       Event{"ts": "2025-01-01T00:00:00.000Z"},
			wantLevel:   "",
			wantMessage: "",
		},
		{
			name:        "non-string values",
			event:       Event{"level": 3, "message": true},
			wantLevel:   "",
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLevel, tt.event.Level())
			assert.Equal(t, tt.wantMessage, tt.event.Message())
		})
	}
}

func TestEventClone(t *testing.T) {
	orig := Event{"level": "info", "count": 2}
	clone := orig.Clone()
	clone["level"] = "debug"
	clone["extra"] = true

	assert.Equal(t, "info", orig["level"])
	assert.NotContains(t, orig, "extra")
	assert.Len(t, clone, 3)
}

func TestCloneFields(t *testing.T) {
	t.Run("nil input yields writable map", func(t *testing.T) {
		c := CloneFields(nil)
		require.NotNil(t, c)
		c["k"] = "v"
		assert.Equal(t, "v", c["k"])
	})

	t.Run("copy is independent", func(t *testing.T) {
		src := Fields{"module": "auth"}
		c := CloneFields(src)
		c["module"] = "billing"
		assert.Equal(t, "auth", src["module"])
	})
}
