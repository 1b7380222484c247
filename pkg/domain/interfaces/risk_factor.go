package interfaces

import (
	"context"

	"github.com/cyffff/riskai/pkg/domain/model"
)

// RiskFactorFilter narrows a risk factor listing. Nil fields match everything.
type RiskFactorFilter struct {
	FeatureID *int64
	IsActive  *bool
}

type RiskFactorRepository interface {
	// Create creates a new risk factor with auto-generated ID
	Create(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error)

	// Get retrieves a risk factor by ID
	Get(ctx context.Context, id int64) (*model.RiskFactor, error)

	// List retrieves risk factors matching the filter, ordered by ID, with
	// offset/limit pagination. Returns the page and the total match count.
	List(ctx context.Context, filter RiskFactorFilter, offset, limit int) ([]*model.RiskFactor, int, error)

	// Update updates an existing risk factor
	Update(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error)

	// ListActive retrieves all active risk factors
	ListActive(ctx context.Context) ([]*model.RiskFactor, error)

	// DeactivateByFeature deactivates every factor referencing the feature
	// and returns how many were changed
	DeactivateByFeature(ctx context.Context, featureID int64) (int, error)
}
