package loggy

import (
	"fmt"

	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/normalize"
)

// Time starts or restarts the named stopwatch, storing the fields
// supplied through With for later timing events. An empty label names
// the shared default stopwatch.
func (l *Logger) Time(label string, args ...Arg) {
	c := collectArgs(args)
	l.timers.Start(timerLabel(label), c.fields)
}

// TimeLog emits a "timing" event with the elapsed seconds since Time
// as its value and the label as its message, keeping the stopwatch
// running. Stored fields merge under the call's own, and a missing
// stopwatch degrades to a warning event.
func (l *Logger) TimeLog(label string, args ...Arg) {
	l.measure(timerLabel(label), collectArgs(args))
}

// TimeEnd emits the same timing event as TimeLog, then removes the
// stopwatch whether or not it existed.
func (l *Logger) TimeEnd(label string, args ...Arg) {
	name := timerLabel(label)
	l.measure(name, collectArgs(args))
	l.timers.Remove(name)
}

func (l *Logger) measure(label string, c callArgs) {
	elapsed, stored, ok := l.timers.Measure(label)
	if !ok {
		l.Warn(fmt.Sprintf("Timer '%s' does not exist", label))
		return
	}

	fields := core.Fields{
		core.FieldLevel: "timing",
		core.FieldValue: elapsed,
	}
	for k, v := range stored {
		fields[k] = v
	}
	for k, v := range c.fields {
		fields[k] = v
	}

	l.emit(core.TextMessage(label), normalize.Args{Fields: fields, Immediate: c.immediate})
}

func timerLabel(label string) string {
	if label == "" {
		return core.DefaultTimerLabel
	}
	return label
}
