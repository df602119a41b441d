package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

func TestNewBreathingPattern(t *testing.T) {
	t.Run("Success: Creates a valid pattern", func(t *testing.T) {
		p, err := domain.NewBreathingPattern("custom", 4, 2, 6, 0)

		assert.NoError(t, err)
		assert.Equal(t, "custom", p.Name)
	})

	t.Run("Fail: Empty name", func(t *testing.T) {
		_, err := domain.NewBreathingPattern("  ", 4, 0, 4, 0)
		assert.ErrorIs(t, err, domain.ErrPatternNameEmpty)
	})

	t.Run("Fail: Non-positive inhale or exhale", func(t *testing.T) {
		_, err := domain.NewBreathingPattern("bad", 0, 0, 4, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPattern)

		_, err = domain.NewBreathingPattern("bad", 4, 0, -1, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPattern)
	})
}

func TestBreathingPattern_NextPhase(t *testing.T) {
	t.Run("Box pattern cycles through all four phases", func(t *testing.T) {
		p := domain.BreathingPattern{Name: "box", Inhale: 4, Hold1: 4, Exhale: 4, Hold2: 4}

		assert.Equal(t, domain.PhaseHold1, p.NextPhase(domain.PhaseInhale))
		assert.Equal(t, domain.PhaseExhale, p.NextPhase(domain.PhaseHold1))
		assert.Equal(t, domain.PhaseHold2, p.NextPhase(domain.PhaseExhale))
		assert.Equal(t, domain.PhaseInhale, p.NextPhase(domain.PhaseHold2))
	})

	t.Run("Zero-duration holds are skipped", func(t *testing.T) {
		p := domain.BreathingPattern{Name: "coherent", Inhale: 5, Exhale: 5}

		assert.Equal(t, domain.PhaseExhale, p.NextPhase(domain.PhaseInhale))
		assert.Equal(t, domain.PhaseInhale, p.NextPhase(domain.PhaseExhale))
	})

	t.Run("Unknown phase falls back to inhale", func(t *testing.T) {
		p := domain.BreathingPattern{Name: "box", Inhale: 4, Hold1: 4, Exhale: 4, Hold2: 4}
		assert.Equal(t, domain.PhaseInhale, p.NextPhase("exhaling"))
	})
}

func TestDefaultPatterns(t *testing.T) {
	patterns := domain.DefaultPatterns()

	names := make(map[string]bool)
	for _, p := range patterns {
		names[p.Name] = true
		assert.Greater(t, p.Inhale, 0)
		assert.Greater(t, p.Exhale, 0)
	}

	assert.True(t, names["box"])
	assert.True(t, names["relaxing"])
	assert.True(t, names["coherent"])
}
