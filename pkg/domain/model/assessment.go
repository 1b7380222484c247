package model

import (
	"time"

	"github.com/cyffff/riskai/pkg/domain/types"
)

// FactorScore records the contribution of a single risk factor to an
// assessment. Score is the weight actually earned (zero when the rule did
// not trigger) and MaxScore is the weight that was at stake.
type FactorScore struct {
	FactorID  int64   `json:"factor_id"`
	FeatureID int64   `json:"feature_id"`
	Triggered bool    `json:"triggered"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
}

// RiskAssessment is an immutable record of one scoring run for a customer.
type RiskAssessment struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	RiskScore  float64         `json:"risk_score"`
	RiskLevel  types.RiskLevel `json:"risk_level"`
	Factors    []FactorScore   `json:"factors"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	AssessedAt time.Time       `json:"assessed_at"`
}

// AssessmentStats is an aggregate view over stored assessments.
type AssessmentStats struct {
	TotalAssessments int                     `json:"total_assessments"`
	AverageScore     float64                 `json:"average_score"`
	MinScore         float64                 `json:"min_score"`
	MaxScore         float64                 `json:"max_score"`
	LevelCounts      map[types.RiskLevel]int `json:"level_counts"`
	UniqueCustomers  int                     `json:"unique_customers"`
}
