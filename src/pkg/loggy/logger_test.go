package loggy

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures delivered events for assertions.
type recordingTransport struct {
	mu      sync.Mutex
	events  []Event
	batches [][]Event
	closed  bool
}

func (r *recordingTransport) Send(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTransport) SendBatch(batch []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	r.events = append(r.events, batch...)
}

func (r *recordingTransport) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recordingTransport) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingTransport) Batches() [][]Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Event(nil), r.batches...)
}

func (r *recordingTransport) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// newRecordedLogger builds an instance delivering to a recording
// transport, console off, exit disarmed. Later options override.
func newRecordedLogger(t *testing.T, opts ...Option) (*Logger, *recordingTransport) {
	t.Helper()
	rt := &recordingTransport{}
	base := []Option{
		WithTransport(rt),
		WithConsole(false),
		WithExitOnFatal(false),
	}
	lg, err := New("testapp", append(base, opts...)...)
	require.NoError(t, err)
	return lg, rt
}

func eventByMessage(t *testing.T, events []Event, message string) Event {
	t.Helper()
	for _, ev := range events {
		if ev.Message() == message {
			return ev
		}
	}
	t.Fatalf("no event with message %q among %d events", message, len(events))
	return nil
}

func TestNew(t *testing.T) {
	t.Run("RequiresApp", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
	})

	t.Run("DefaultEndpoint", func(t *testing.T) {
		lg, err := New("myapp", WithConsole(false))
		require.NoError(t, err)
		assert.Equal(t, "myapp", lg.App())
		lg.Close()
	})

	t.Run("TCPEndpoint", func(t *testing.T) {
		lg, err := New("myapp",
			WithEndpoint("tcp://127.0.0.1:9514"),
			WithConsole(false))
		require.NoError(t, err)
		lg.Close()
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		_, err := New("myapp", WithEndpoint("udp://127.0.0.1:9514"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported endpoint scheme")
	})

	t.Run("BadConsoleFormat", func(t *testing.T) {
		_, err := New("myapp", WithConsoleFormat("xml"))
		require.Error(t, err)
	})
}

func TestLogUnthrottled(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Info("first")
	lg.Info("second")
	lg.Info("third")
	lg.Flush()

	events := rt.Events()
	require.Len(t, events, 3)
	assert.Empty(t, rt.Batches(), "unthrottled delivery must bypass batching")

	ev := eventByMessage(t, events, "first")
	assert.Equal(t, "info", ev.Level())
	assert.NotEmpty(t, ev["ts"])
}

func TestLogThrottledOrder(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(time.Hour))

	messages := []string{"a", "b", "c", "d", "e"}
	for _, m := range messages {
		lg.Info(m)
	}
	lg.Flush()

	batches := rt.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], len(messages))
	for i, m := range messages {
		assert.Equal(t, m, batches[0][i].Message())
	}
}

func TestThrottleLimitForcesFlush(t *testing.T) {
	lg, rt := newRecordedLogger(t,
		WithThrottleInterval(time.Hour),
		WithThrottleLimit(3))

	lg.Info("one")
	lg.Info("two")
	lg.Info("three")
	lg.Flush()

	batches := rt.Batches()
	require.Len(t, batches, 1, "hitting the limit must ship exactly one batch")
	assert.Len(t, batches[0], 3)
}

func TestImmediateFlush(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(time.Hour))

	lg.Info("urgent", Immediate())
	lg.Flush()

	batches := rt.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "urgent", batches[0][0].Message())
}

func TestTimerFlush(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(20*time.Millisecond))

	lg.Info("deferred")

	require.Eventually(t, func() bool {
		return len(rt.Batches()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "deferred", rt.Batches()[0][0].Message())
}

func TestFatalExit(t *testing.T) {
	t.Run("ExitAfterDelivery", func(t *testing.T) {
		rt := &recordingTransport{}
		var exitCode int
		exited := false
		lg, err := New("testapp",
			WithTransport(rt),
			WithConsole(false),
			WithExitFunc(func(code int) {
				exitCode = code
				exited = true
				require.NotEmpty(t, rt.Events(), "fatal event must reach the transport before exit")
			}))
		require.NoError(t, err)

		lg.Fatal("boom")

		require.True(t, exited)
		assert.Equal(t, 1, exitCode)
		ev := eventByMessage(t, rt.Events(), "boom")
		assert.Equal(t, "fatal", ev.Level())
	})

	t.Run("DisabledNoExit", func(t *testing.T) {
		exited := false
		lg, rt := newRecordedLogger(t,
			WithExitFunc(func(int) { exited = true }))

		lg.Fatal("boom")
		lg.Flush()

		assert.False(t, exited)
		require.NotEmpty(t, rt.Events())
	})

	t.Run("ToggleAtRuntime", func(t *testing.T) {
		exited := false
		lg, _ := newRecordedLogger(t,
			WithExitFunc(func(int) { exited = true }))

		lg.SetExitOnFatal(true)
		lg.Emerg("down")
		assert.True(t, exited)
	})
}

func TestConsoleEcho(t *testing.T) {
	var buf bytes.Buffer
	rt := &recordingTransport{}
	lg, err := New("testapp",
		WithTransport(rt),
		WithConsoleWriter(&buf),
		WithExitOnFatal(false))
	require.NoError(t, err)

	lg.Info("hello console")
	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "hello console")

	lg.SetConsole(false)
	lg.Info("silent")
	assert.NotContains(t, buf.String(), "silent")

	lg.Flush()
	assert.Len(t, rt.Events(), 2, "echo toggling must not affect delivery")
}

func TestDefaultsPrecedence(t *testing.T) {
	lg, rt := newRecordedLogger(t,
		WithThrottleInterval(0),
		WithDefaults(Fields{"module": "api", "user": "u1"}))

	lg.Info("layered", With(Fields{"user": "u2"}))
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "layered")
	assert.Equal(t, "api", ev["module"])
	assert.Equal(t, "u2", ev["user"], "caller fields override defaults")
	assert.NotEmpty(t, ev["ts"])
}

func TestValueArg(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Log(Text("msg"), Value(3.14))
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "msg")
	assert.Equal(t, 3.14, ev["value"])
}

type codedError struct {
	msg string
}

func (e *codedError) Error() string        { return e.msg }
func (e *codedError) ErrorCode() string    { return "X" }
func (e *codedError) ErrorDetails() string { return "Z" }

func TestErrorEvents(t *testing.T) {
	t.Run("CodedError", func(t *testing.T) {
		lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

		lg.Log(Err(&codedError{msg: "Y"}))
		lg.Flush()

		ev := eventByMessage(t, rt.Events(), "Y")
		assert.Equal(t, "error", ev.Level())
		assert.Equal(t, "X", ev["code"])
		assert.Equal(t, "Z", ev["details"])
	})

	t.Run("CodeOverride", func(t *testing.T) {
		lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

		lg.Log(Err(&codedError{msg: "Y"}), With(Fields{"code": "override"}))
		lg.Flush()

		ev := eventByMessage(t, rt.Events(), "Y")
		assert.Equal(t, "override", ev["code"])
	})

	t.Run("PlainError", func(t *testing.T) {
		lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

		lg.Log(Err(assert.AnError))
		lg.Flush()

		events := rt.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "error", events[0].Level())
		assert.NotEmpty(t, events[0]["code"], "uncoded errors fall back to the type name")
	})
}

func TestGroupEvents(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Log(Group(Text("a"), Text("b")), With(Fields{"batch": "g1"}))
	lg.Flush()

	events := rt.Events()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, "g1", ev["batch"], "group members share call arguments")
	}
}

func TestSetThrottle(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Info("direct")
	lg.Flush()
	require.Len(t, rt.Events(), 1)
	require.Empty(t, rt.Batches())

	lg.SetThrottle(time.Hour, 10)
	lg.Info("buffered")
	assert.Len(t, rt.Events(), 1, "buffered event must wait for a flush")

	lg.Flush()
	require.Len(t, rt.Batches(), 1)
	assert.Equal(t, "buffered", rt.Batches()[0][0].Message())
}

func TestClose(t *testing.T) {
	t.Run("CustomTransportStaysOpen", func(t *testing.T) {
		lg, rt := newRecordedLogger(t, WithThrottleInterval(time.Hour))

		lg.Info("pending")
		lg.Close()

		assert.Len(t, rt.Events(), 1, "close must flush the buffer")
		assert.False(t, rt.Closed(), "caller-supplied transports are caller-owned")
	})

	t.Run("OwnedTransportCloses", func(t *testing.T) {
		lg, err := New("myapp", WithConsole(false))
		require.NoError(t, err)
		lg.Close()
	})
}

func TestLogWithoutLevel(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Log(Text("bare"))
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "bare")
	assert.Equal(t, "", ev.Level())
	assert.NotEmpty(t, ev["ts"])
}

func TestRecordMessage(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Log(Record(Fields{"message": "structured", "level": "notice", "port": 8080}))
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "structured")
	assert.Equal(t, "notice", ev.Level())
	assert.Equal(t, 8080, ev["port"])
}

func TestConsoleFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	rt := &recordingTransport{}
	lg, err := New("testapp",
		WithTransport(rt),
		WithConsoleWriter(&buf),
		WithConsoleFormat("json"),
		WithExitOnFatal(false))
	require.NoError(t, err)

	lg.Info("as json")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "json echo renders an object: %s", line)
	assert.Contains(t, line, `"as json"`)
}
