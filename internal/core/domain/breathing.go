package domain

import (
	"errors"
	"strings"
)

var (
	ErrPatternNameEmpty = errors.New("breathing pattern name cannot be empty")
	ErrInvalidPattern   = errors.New("breathing pattern needs positive inhale and exhale durations")
	ErrPatternNotFound  = errors.New("breathing pattern not found")
)

const (
	PhaseInhale = "inhale"
	PhaseHold1  = "hold1"
	PhaseExhale = "exhale"
	PhaseHold2  = "hold2"
)

// BreathingPattern holds per-phase durations in seconds. Hold phases
// with zero duration are skipped by the cycle.
type BreathingPattern struct {
	Name   string `json:"name"`
	Inhale int    `json:"inhale"`
	Hold1  int    `json:"hold1"`
	Exhale int    `json:"exhale"`
	Hold2  int    `json:"hold2"`
}

func NewBreathingPattern(name string, inhale, hold1, exhale, hold2 int) (*BreathingPattern, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrPatternNameEmpty
	}
	if inhale <= 0 || exhale <= 0 || hold1 < 0 || hold2 < 0 {
		return nil, ErrInvalidPattern
	}

	return &BreathingPattern{
		Name:   strings.TrimSpace(name),
		Inhale: inhale,
		Hold1:  hold1,
		Exhale: exhale,
		Hold2:  hold2,
	}, nil
}

// DefaultPatterns are the built-in patterns available without any
// custom configuration.
func DefaultPatterns() []BreathingPattern {
	return []BreathingPattern{
		{Name: "box", Inhale: 4, Hold1: 4, Exhale: 4, Hold2: 4},
		{Name: "relaxing", Inhale: 4, Hold1: 7, Exhale: 8},
		{Name: "coherent", Inhale: 5, Exhale: 5},
	}
}

// PhaseDuration returns the configured seconds for a phase.
func (p *BreathingPattern) PhaseDuration(phase string) int {
	switch phase {
	case PhaseInhale:
		return p.Inhale
	case PhaseHold1:
		return p.Hold1
	case PhaseExhale:
		return p.Exhale
	case PhaseHold2:
		return p.Hold2
	default:
		return 0
	}
}

// NextPhase advances the inhale → hold1 → exhale → hold2 → inhale
// cycle, skipping hold phases the pattern leaves at zero.
func (p *BreathingPattern) NextPhase(phase string) string {
	next := map[string]string{
		PhaseInhale: PhaseHold1,
		PhaseHold1:  PhaseExhale,
		PhaseExhale: PhaseHold2,
		PhaseHold2:  PhaseInhale,
	}

	current := phase
	for i := 0; i < 4; i++ {
		candidate, ok := next[current]
		if !ok {
			return PhaseInhale
		}
		if p.PhaseDuration(candidate) > 0 {
			return candidate
		}
		current = candidate
	}
	return PhaseInhale
}
