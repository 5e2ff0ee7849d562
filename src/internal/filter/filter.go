package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
)

// Filter types.
const (
	TypeInclude = "include"
	TypeExclude = "exclude"
)

// Pattern combination logic.
const (
	LogicOr  = "or"
	LogicAnd = "and"
)

// Config describes a single regex filter stage.
type Config struct {
	// "include" keeps matching events, "exclude" drops them. Default: include.
	Type string `toml:"type"`

	// "or" matches on any pattern, "and" requires all. Default: or.
	Logic string `toml:"logic"`

	Patterns []string `toml:"patterns"`
}

// Validate checks type, logic and pattern syntax without compiling a filter.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeInclude, TypeExclude, "":
	default:
		return fmt.Errorf("invalid filter type '%s' (must be 'include' or 'exclude')", c.Type)
	}

	switch c.Logic {
	case LogicOr, LogicAnd, "":
	default:
		return fmt.Errorf("invalid filter logic '%s' (must be 'or' or 'and')", c.Logic)
	}

	for i, pattern := range c.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("pattern[%d] '%s': invalid regex: %w", i, pattern, err)
		}
	}

	return nil
}

// Filter applies regex-based filtering to events before dispatch
type Filter struct {
	config   Config
	patterns []*regexp.Regexp
	logger   *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalMatched   atomic.Uint64
	totalDropped   atomic.Uint64
}

// New creates a new filter from configuration
func New(cfg Config, logger *log.Logger) (*Filter, error) {
	// Set defaults
	if cfg.Type == "" {
		cfg.Type = TypeInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = LogicOr
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	f := &Filter{
		config:   cfg,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)),
		logger:   logger,
	}

	// Compile patterns
	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		f.patterns = append(f.patterns, re)
	}

	logger.Debug("msg", "Filter created",
		"component", "filter",
		"type", cfg.Type,
		"logic", cfg.Logic,
		"pattern_count", len(cfg.Patterns))

	return f, nil
}

// Apply checks if an event should be passed through
func (f *Filter) Apply(ev core.Event) bool {
	f.totalProcessed.Add(1)

	// No patterns means pass everything
	if len(f.patterns) == 0 {
		return true
	}

	// Match against the severity-prefixed message text
	text := ev.Message()
	if level := ev.Level(); level != "" {
		text = level + " " + text
	}

	matched := f.matches(text)
	if matched {
		f.totalMatched.Add(1)
	}

	// Determine if we should pass or drop
	shouldPass := false
	switch f.config.Type {
	case TypeInclude:
		shouldPass = matched
	case TypeExclude:
		shouldPass = !matched
	}

	if !shouldPass {
		f.totalDropped.Add(1)
	}

	return shouldPass
}

// matches checks if text matches the patterns according to the logic
func (f *Filter) matches(text string) bool {
	switch f.config.Logic {
	case LogicOr:
		// Match any pattern
		for _, re := range f.patterns {
			if re.MatchString(text) {
				return true
			}
		}
		return false

	case LogicAnd:
		// Must match all patterns
		for _, re := range f.patterns {
			if !re.MatchString(text) {
				return false
			}
		}
		return true

	default:
		// Shouldn't happen after validation
		f.logger.Warn("msg", "Unknown filter logic",
			"component", "filter",
			"logic", f.config.Logic)
		return false
	}
}

// Stats returns filter statistics
func (f *Filter) Stats() map[string]any {
	return map[string]any{
		"type":            f.config.Type,
		"logic":           f.config.Logic,
		"pattern_count":   len(f.patterns),
		"total_processed": f.totalProcessed.Load(),
		"total_matched":   f.totalMatched.Load(),
		"total_dropped":   f.totalDropped.Load(),
	}
}
