package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskScore(t *testing.T) {
	m := DefaultRiskModel()

	tests := []struct {
		name     string
		speedKmh float64
		want     float64
	}{
		{"calm water peaks", 0, 0.90},
		{"moderate wind", 10, 0.70},
		{"strong wind clamps at floor", 40, 0.10},
		{"hurricane still floors", 120, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Score(tt.speedKmh), 1e-9)
		})
	}
}

func TestRiskScoreBounded(t *testing.T) {
	m := DefaultRiskModel()
	for s := -10.0; s <= 100; s += 2.5 {
		score := m.Score(s)
		assert.GreaterOrEqual(t, score, 0.10)
		assert.LessOrEqual(t, score, 0.95)
	}
}

func TestRiskScoreMonotonicallyNonIncreasing(t *testing.T) {
	m := DefaultRiskModel()
	prev := m.Score(0)
	for s := 0.5; s <= 60; s += 0.5 {
		cur := m.Score(s)
		assert.LessOrEqual(t, cur, prev, "score rose at speed %f", s)
		prev = cur
	}
}
