package core

// Severities lists the labels the collector recognizes, ordered from
// most verbose to most severe. The table drives the convenience
// methods on the client; membership is advisory, events may carry any
// level value.
var Severities = []string{
	"trace",
	"verbose",
	"silly",
	"debug",
	"info",
	"notice",
	"success",
	"http",
	"timing",
	"redirect",
	"warn",
	"warning",
	"error",
	"crit",
	"critical",
	"fatal",
	"alert",
	"emerg",
	"emergency",
}

// Fatal-class labels force process termination when exit-on-fatal is
// enabled. Matching is case-sensitive.
var fatalSeverities = map[string]struct{}{
	"fatal":     {},
	"emerg":     {},
	"emergency": {},
}

var severitySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Severities))
	for _, label := range Severities {
		set[label] = struct{}{}
	}
	return set
}()

// KnownSeverity reports whether label appears in the severity table.
func KnownSeverity(label string) bool {
	_, ok := severitySet[label]
	return ok
}

// FatalSeverity reports whether label is fatal-class.
func FatalSeverity(label string) bool {
	_, ok := fatalSeverities[label]
	return ok
}
