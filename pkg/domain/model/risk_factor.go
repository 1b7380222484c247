package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/types"
)

// RiskFactor is a weighted comparison rule over a single feature. An active
// factor contributes its weight to an assessment when the submitted feature
// value satisfies the operator against the threshold.
type RiskFactor struct {
	ID          int64           `json:"id"`
	FeatureID   int64           `json:"feature_id"`
	Weight      float64         `json:"weight"`
	Threshold   Value           `json:"threshold"`
	Operator    types.Operator  `json:"operator"`
	RiskLevel   types.RiskLevel `json:"risk_level"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the factor's own fields: weight bounds, known operator
// and risk level, and a threshold shape that fits the operator.
func (f *RiskFactor) Validate() error {
	if f.FeatureID == 0 {
		return goerr.New("risk factor requires a feature ID")
	}
	if f.Weight <= 0 || f.Weight > 1 {
		return goerr.New("risk factor weight must be within (0, 1]",
			goerr.V("weight", f.Weight))
	}
	if !f.Operator.IsValid() {
		return goerr.New("unknown operator", goerr.V("operator", f.Operator))
	}
	if !f.RiskLevel.IsValid() {
		return goerr.New("unknown risk level", goerr.V("risk_level", f.RiskLevel))
	}
	if f.Threshold.IsNil() {
		return goerr.New("risk factor requires a threshold")
	}
	switch f.Operator {
	case types.OperatorBetween:
		items, ok := f.Threshold.List()
		if !ok || len(items) != 2 {
			return goerr.New("between operator requires a [low, high] threshold pair",
				goerr.V("threshold", f.Threshold.String()))
		}
	case types.OperatorIn:
		if _, ok := f.Threshold.List(); !ok {
			return goerr.New("in operator requires a list threshold",
				goerr.V("threshold", f.Threshold.String()))
		}
	}
	return nil
}

// ValidateAgainst checks operator/data-type compatibility with the
// referenced feature
func (f *RiskFactor) ValidateAgainst(feature *Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if !f.Operator.CompatibleWith(feature.DataType) {
		return goerr.New("operator is not applicable to feature data type",
			goerr.V("operator", f.Operator),
			goerr.V("data_type", feature.DataType),
			goerr.V("feature", feature.Name))
	}
	return nil
}
