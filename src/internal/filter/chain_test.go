package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChain(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"apple"}},
			{Type: TypeExclude, Patterns: []string{"banana"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)
		assert.NotNil(t, chain)
		assert.Len(t, chain.filters, 2)
		assert.Equal(t, 2, chain.Len())
	})

	t.Run("ErrorInvalidRegexInChain", func(t *testing.T) {
		configs := []Config{
			{Patterns: []string{"apple"}},
			{Patterns: []string{"["}},
		}
		chain, err := NewChain(configs, logger)
		assert.Error(t, err)
		assert.Nil(t, chain)
		assert.Contains(t, err.Error(), "filter[1]")
	})

	t.Run("EmptyConfigs", func(t *testing.T) {
		chain, err := NewChain(nil, logger)
		assert.NoError(t, err)
		assert.NotNil(t, chain)
		assert.Equal(t, 0, chain.Len())
	})
}

func TestChainApply(t *testing.T) {
	logger := newTestLogger()

	t.Run("EmptyChainPassesAll", func(t *testing.T) {
		chain, err := NewChain(nil, logger)
		assert.NoError(t, err)
		assert.True(t, chain.Apply(event("info", "anything")))
	})

	t.Run("AllFiltersMustPass", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"request"}},
			{Type: TypeExclude, Patterns: []string{"healthcheck"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)

		assert.True(t, chain.Apply(event("info", "request served")))
		assert.False(t, chain.Apply(event("info", "request healthcheck served")))
		assert.False(t, chain.Apply(event("info", "idle tick")))
	})

	t.Run("Stats", func(t *testing.T) {
		configs := []Config{
			{Type: TypeExclude, Patterns: []string{"noise"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)

		assert.True(t, chain.Apply(event("info", "signal")))
		assert.False(t, chain.Apply(event("info", "noise")))

		stats := chain.Stats()
		assert.Equal(t, 1, stats["filter_count"])
		assert.Equal(t, uint64(2), stats["total_processed"])
		assert.Equal(t, uint64(1), stats["total_passed"])
	})
}
