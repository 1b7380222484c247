package model

import "github.com/cyffff/riskai/pkg/domain/types"

// EvaluateFactor reports whether the submitted value triggers the factor's
// rule. Type mismatches and unknown operators never error: a comparison that
// cannot be made simply does not trigger.
func EvaluateFactor(op types.Operator, value, threshold Value) bool {
	switch op {
	case types.OperatorEq:
		return value.Equal(threshold)
	case types.OperatorNe:
		return !value.Equal(threshold)
	case types.OperatorGt:
		if c, ok := value.Compare(threshold); ok {
			return c > 0
		}
	case types.OperatorGte:
		if c, ok := value.Compare(threshold); ok {
			return c >= 0
		}
	case types.OperatorLt:
		if c, ok := value.Compare(threshold); ok {
			return c < 0
		}
	case types.OperatorLte:
		if c, ok := value.Compare(threshold); ok {
			return c <= 0
		}
	case types.OperatorBetween:
		bounds, ok := threshold.List()
		if !ok || len(bounds) != 2 {
			return false
		}
		low, okLow := value.Compare(bounds[0])
		high, okHigh := value.Compare(bounds[1])
		return okLow && okHigh && low >= 0 && high <= 0
	case types.OperatorIn:
		items, ok := threshold.List()
		if !ok {
			return false
		}
		for _, item := range items {
			if value.Equal(item) {
				return true
			}
		}
	}
	return false
}
