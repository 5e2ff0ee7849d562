package source

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

const maxLineSize = 1024 * 1024 // 1MB

// Stdin reads newline-delimited log records from a reader, typically a
// pipe on standard input, and hands each to the emit callback as a
// normalization-ready event. JSON object lines pass through with their
// fields intact; plain text lines become message events with a
// best-effort severity sniffed from conventional markers.
type Stdin struct {
	reader io.Reader
	emit   func(core.Event)
	logger *log.Logger

	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	totalLines   atomic.Uint64
	jsonLines    atomic.Uint64
	startTime    time.Time
	lastLineTime atomic.Value // time.Time
}

func NewStdin(r io.Reader, emit func(core.Event), logger *log.Logger) *Stdin {
	if logger == nil {
		logger = log.NewLogger()
	}
	s := &Stdin{
		reader:    r,
		emit:      emit,
		logger:    logger,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		startTime: time.Now(),
	}
	s.lastLineTime.Store(time.Time{})
	return s
}

// Start begins the read loop.
func (s *Stdin) Start() {
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started", "component", "stdin_source")
}

// Done is closed when the input is exhausted or the source is stopped.
func (s *Stdin) Done() <-chan struct{} {
	return s.finished
}

// Stop ends the read loop after the current line. A read blocked on an
// idle pipe keeps blocking until the next line or EOF.
func (s *Stdin) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Stats returns ingest counters.
func (s *Stdin) Stats() map[string]any {
	last, _ := s.lastLineTime.Load().(time.Time)
	return map[string]any{
		"total_lines":    s.totalLines.Load(),
		"json_lines":     s.jsonLines.Load(),
		"start_time":     core.Timestamp(s.startTime),
		"last_line_time": core.Timestamp(last),
	}
}

func (s *Stdin) readLoop() {
	defer close(s.finished)

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		s.process(line)
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading input",
			"component", "stdin_source",
			"error", err)
	}
}

func (s *Stdin) process(line string) {
	s.totalLines.Add(1)
	s.lastLineTime.Store(time.Now())

	if ev, ok := parseJSONLine(line); ok {
		s.jsonLines.Add(1)
		s.emit(ev)
		return
	}

	ev := core.Event{core.FieldMessage: line}
	if level := SniffLevel(line); level != "" {
		ev[core.FieldLevel] = level
	}
	s.emit(ev)
}

// parseJSONLine accepts a line as structured input when it is a JSON
// object with at least one field.
func parseJSONLine(line string) (core.Event, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var ev core.Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil || len(ev) == 0 {
		return nil, false
	}
	return ev, true
}

// SniffLevel guesses a severity label from conventional log line
// markers, "" when nothing matches.
func SniffLevel(line string) string {
	patterns := []struct {
		markers []string
		level   string
	}{
		{[]string{"[ERROR]", "ERROR:", " ERROR ", "ERR:", "[ERR]", "FATAL:", "[FATAL]"}, "error"},
		{[]string{"[WARN]", "WARN:", " WARN ", "WARNING:", "[WARNING]"}, "warn"},
		{[]string{"[INFO]", "INFO:", " INFO ", "[INF]", "INF:"}, "info"},
		{[]string{"[DEBUG]", "DEBUG:", " DEBUG ", "[DBG]", "DBG:"}, "debug"},
		{[]string{"[TRACE]", "TRACE:", " TRACE "}, "trace"},
	}

	upper := strings.ToUpper(line)
	for _, group := range patterns {
		for _, marker := range group.markers {
			if strings.Contains(upper, marker) {
				return group.level
			}
		}
	}
	return ""
}
