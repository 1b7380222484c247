package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/types"
)

// ScorePolicy maps a normalized 0-100 score to a risk level. A single policy
// instance is shared by the assessment flow and the statistics aggregation so
// both always classify identically.
type ScorePolicy struct {
	HighThreshold   float64 `json:"high_threshold" toml:"high_threshold"`
	MediumThreshold float64 `json:"medium_threshold" toml:"medium_threshold"`
}

// DefaultScorePolicy returns the standard thresholds: 80 and above is high,
// 50 and above is medium, anything lower is low.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		HighThreshold:   80,
		MediumThreshold: 50,
	}
}

func (p ScorePolicy) Classify(score float64) types.RiskLevel {
	switch {
	case score >= p.HighThreshold:
		return types.RiskLevelHigh
	case score >= p.MediumThreshold:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelLow
	}
}

func (p ScorePolicy) Validate() error {
	if p.HighThreshold < 0 || p.HighThreshold > 100 {
		return goerr.New("high threshold must be within [0, 100]",
			goerr.V("high_threshold", p.HighThreshold))
	}
	if p.MediumThreshold < 0 || p.MediumThreshold > 100 {
		return goerr.New("medium threshold must be within [0, 100]",
			goerr.V("medium_threshold", p.MediumThreshold))
	}
	if p.MediumThreshold > p.HighThreshold {
		return goerr.New("medium threshold must not exceed high threshold",
			goerr.V("medium_threshold", p.MediumThreshold),
			goerr.V("high_threshold", p.HighThreshold))
	}
	return nil
}
