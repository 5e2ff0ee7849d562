package loggy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAndTimeEnd(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Time("t1")
	time.Sleep(60 * time.Millisecond)
	lg.TimeEnd("t1")
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "t1")
	assert.Equal(t, "timing", ev.Level())

	elapsed, ok := ev["value"].(float64)
	require.True(t, ok, "elapsed time is fractional seconds")
	assert.GreaterOrEqual(t, elapsed, 0.05)
	assert.Less(t, elapsed, 10.0)

	lg.TimeLog("t1")
	lg.Flush()

	warning := eventByMessage(t, rt.Events(), "Timer 't1' does not exist")
	assert.Equal(t, "warn", warning.Level())
}

func TestTimeLogKeepsTimerRunning(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Time("loop")
	time.Sleep(10 * time.Millisecond)
	lg.TimeLog("loop")
	time.Sleep(10 * time.Millisecond)
	lg.TimeLog("loop")
	lg.Flush()

	var readings []float64
	for _, ev := range rt.Events() {
		if ev.Message() == "loop" {
			readings = append(readings, ev["value"].(float64))
		}
	}
	require.Len(t, readings, 2)
	assert.Greater(t, readings[1], readings[0], "stopwatch keeps running between readings")
}

func TestTimeDefaultLabel(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Time("")
	lg.TimeEnd("")
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "default")
	assert.Equal(t, "timing", ev.Level())
}

func TestTimeFieldLayering(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Time("req", With(Fields{"route": "/a", "verb": "GET"}))
	lg.TimeLog("req", With(Fields{"verb": "POST"}))
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "req")
	assert.Equal(t, "/a", ev["route"], "fields stored at start survive")
	assert.Equal(t, "POST", ev["verb"], "call-site fields win over stored ones")
}

func TestTimeEndMissingTimer(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.TimeEnd("ghost")
	lg.Flush()

	events := rt.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "warn", events[0].Level())
	assert.Equal(t, "Timer 'ghost' does not exist", events[0].Message())
}

func TestTimeOverwriteRestarts(t *testing.T) {
	lg, rt := newRecordedLogger(t, WithThrottleInterval(0))

	lg.Time("t")
	time.Sleep(40 * time.Millisecond)
	lg.Time("t")
	lg.TimeEnd("t")
	lg.Flush()

	ev := eventByMessage(t, rt.Events(), "t")
	assert.Less(t, ev["value"].(float64), 0.04, "restarting resets the start instant")
}
