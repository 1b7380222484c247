package model

// FeatureImportance is one entry of an importance ranking fetched from the
// upstream feature platform.
type FeatureImportance struct {
	FeatureName string  `json:"feature_name"`
	Importance  float64 `json:"importance"`
}

// FeatureMetrics is summary statistics for a feature's stored values.
type FeatureMetrics struct {
	FeatureName string  `json:"feature_name"`
	Count       int     `json:"count"`
	Mean        float64 `json:"mean,omitempty"`
	Min         float64 `json:"min,omitempty"`
	Max         float64 `json:"max,omitempty"`
	NullRate    float64 `json:"null_rate"`
}
