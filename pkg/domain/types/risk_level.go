package types

// RiskLevel represents a discrete risk classification
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "high"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelLow    RiskLevel = "low"
)

// AllRiskLevels returns all valid risk levels
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelHigh,
		RiskLevelMedium,
		RiskLevelLow,
	}
}

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelHigh, RiskLevelMedium, RiskLevelLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	return string(l)
}
