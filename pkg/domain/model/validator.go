package model

import (
	"fmt"
	"time"

	"github.com/cyffff/riskai/pkg/domain/types"
)

// ValidationResult accumulates every violation found for a value instead of
// stopping at the first, so callers can report the full list at once.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.IsValid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateFeatureValue checks a submitted value against the feature's data
// type and constraints. It never returns an error: malformed input is a
// validation failure, not a fault.
func ValidateFeatureValue(feature *Feature, value Value) ValidationResult {
	result := ValidationResult{IsValid: true}

	if value.IsNil() {
		result.addError("value is required for feature %q", feature.Name)
		return result
	}

	switch feature.DataType {
	case types.DataTypeNumeric:
		num, ok := value.Number()
		if !ok {
			result.addError("feature %q expects a numeric value, got %s", feature.Name, value.Kind())
			return result
		}
		if min := feature.Constraints.Min; min != nil && num < *min {
			result.addError("value %v is below minimum %v", num, *min)
		}
		if max := feature.Constraints.Max; max != nil && num > *max {
			result.addError("value %v is above maximum %v", num, *max)
		}

	case types.DataTypeCategorical:
		text, ok := value.Text()
		if !ok {
			result.addError("feature %q expects a categorical value, got %s", feature.Name, value.Kind())
			return result
		}
		if cats := feature.Constraints.Categories; len(cats) > 0 {
			found := false
			for _, c := range cats {
				if c == text {
					found = true
					break
				}
			}
			if !found {
				result.addError("value %q is not one of the allowed categories", text)
			}
		}

	case types.DataTypeBoolean:
		if _, ok := value.Bool(); !ok {
			result.addError("feature %q expects a boolean value, got %s", feature.Name, value.Kind())
		}

	case types.DataTypeText:
		text, ok := value.Text()
		if !ok {
			result.addError("feature %q expects a text value, got %s", feature.Name, value.Kind())
			return result
		}
		if maxLen := feature.Constraints.MaxLength; maxLen != nil && len(text) > *maxLen {
			result.addError("text length %d exceeds maximum %d", len(text), *maxLen)
		}

	case types.DataTypeDate:
		text, ok := value.Text()
		if !ok {
			result.addError("feature %q expects a date value, got %s", feature.Name, value.Kind())
			return result
		}
		if !isValidDate(text) {
			result.addError("value %q is not a valid ISO-8601 date", text)
		}

	default:
		result.addError("feature %q has unknown data type %q", feature.Name, feature.DataType)
	}

	return result
}

func isValidDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
