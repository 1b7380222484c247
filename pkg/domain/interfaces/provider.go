package interfaces

import (
	"context"

	"github.com/cyffff/riskai/pkg/domain/model"
)

// FeatureValueProvider resolves values for features that were not supplied
// with an assessment request, typically from an upstream feature platform.
// A provider returns (nil-value, false, nil) when it has no value.
type FeatureValueProvider interface {
	FetchValue(ctx context.Context, featureName, entityID string) (model.Value, bool, error)
}

// FeatureInsightProvider exposes analytics from the upstream feature platform.
type FeatureInsightProvider interface {
	Importance(ctx context.Context) ([]model.FeatureImportance, error)
	Metrics(ctx context.Context, featureName string) (*model.FeatureMetrics, error)
}
