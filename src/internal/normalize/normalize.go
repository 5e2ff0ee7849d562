package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"
)

// Args carries the optional arguments of a log call after variant
// resolution. Fields and Value are mutually exclusive; Fields wins
// when both are set.
type Args struct {
	Fields    core.Fields
	Value     *float64
	Immediate bool
}

// Result is one normalized event ready for dispatch.
type Result struct {
	Event     core.Event
	Immediate bool
	Fatal     bool
}

// ErrorCoder supplies a collector-facing error code. Errors that do
// not implement it anywhere in their unwrap chain are coded by their
// concrete Go type name.
type ErrorCoder interface {
	ErrorCode() string
}

// ErrorDetailer supplies the diagnostic payload shipped in the
// "details" field, typically a stack trace.
type ErrorDetailer interface {
	ErrorDetails() string
}

// Normalize resolves one log call into dispatchable events. Field
// layering runs lowest to highest priority: instance defaults, the
// generated timestamp, call arguments, then the message payload
// itself. Group payloads yield one result per member; every other
// payload yields exactly one.
func Normalize(defaults core.Fields, msg core.Message, args Args, now func() time.Time) []Result {
	if now == nil {
		now = time.Now
	}

	switch msg.Kind {
	case core.KindGroup:
		results := make([]Result, 0, len(msg.Group))
		for _, member := range msg.Group {
			results = append(results, Normalize(defaults, member, args, now)...)
		}
		return results

	case core.KindError:
		if msg.Err == nil {
			return Normalize(defaults, core.TextMessage(""), args, now)
		}
		synthesized := core.Fields{
			core.FieldLevel:   "error",
			core.FieldCode:    ErrorCode(msg.Err),
			core.FieldMessage: msg.Err.Error(),
		}
		if details := ErrorDetails(msg.Err); details != "" {
			synthesized[core.FieldDetails] = details
		}
		for k, v := range argFields(args) {
			synthesized[k] = v
		}
		return Normalize(defaults, core.RecordMessage(synthesized), Args{Immediate: args.Immediate}, now)
	}

	ev := make(core.Event, len(defaults)+len(args.Fields)+4)
	ev.Merge(defaults)
	ev[core.FieldTimestamp] = core.Timestamp(now())
	ev.Merge(argFields(args))

	if msg.Kind == core.KindRecord {
		ev.Merge(msg.Record)
	} else {
		ev[core.FieldMessage] = msg.Text
	}

	return []Result{{
		Event:     ev,
		Immediate: args.Immediate,
		Fatal:     core.FatalSeverity(ev.Level()),
	}}
}

// argFields reduces call arguments to their field form: the explicit
// object, or {value: n} for a numeric argument.
func argFields(args Args) core.Fields {
	if args.Fields != nil {
		return args.Fields
	}
	if args.Value != nil {
		return core.Fields{core.FieldValue: *args.Value}
	}
	return nil
}

// ErrorCode resolves the "code" field for err.
func ErrorCode(err error) string {
	var coder ErrorCoder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// ErrorDetails resolves the "details" payload for err, empty when no
// error in the unwrap chain provides one.
func ErrorDetails(err error) string {
	var detailer ErrorDetailer
	if errors.As(err, &detailer) {
		return detailer.ErrorDetails()
	}
	return ""
}
