package loggy

import (
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/normalize"
)

// ErrorCoder lets an error control the "code" field of the event
// emitted for it. Errors without it are coded by their Go type name.
type ErrorCoder interface {
	ErrorCode() string
}

// ErrorDetailer lets an error attach a diagnostic payload, shipped in
// the "details" field.
type ErrorDetailer interface {
	ErrorDetails() string
}

// Arg is an optional argument of a log call.
type Arg interface {
	apply(*callArgs)
}

type callArgs struct {
	fields    core.Fields
	value     *float64
	immediate bool
}

type fieldsArg core.Fields

func (a fieldsArg) apply(c *callArgs) { c.fields = core.Fields(a) }

type valueArg float64

func (a valueArg) apply(c *callArgs) {
	v := float64(a)
	c.value = &v
}

type immediateArg struct{}

func (immediateArg) apply(c *callArgs) { c.immediate = true }

// With attaches caller fields to the event. Fields override instance
// defaults and the generated timestamp.
func With(fields Fields) Arg {
	return fieldsArg(fields)
}

// Value attaches a single numeric measurement as the "value" field.
// Ignored when With is also present.
func Value(v float64) Arg {
	return valueArg(v)
}

// Immediate forces the buffer to flush as soon as the event is
// enqueued.
func Immediate() Arg {
	return immediateArg{}
}

func collectArgs(args []Arg) callArgs {
	var c callArgs
	for _, a := range args {
		if a != nil {
			a.apply(&c)
		}
	}
	return c
}

func (c callArgs) normalized() normalize.Args {
	return normalize.Args{
		Fields:    c.fields,
		Value:     c.value,
		Immediate: c.immediate,
	}
}
