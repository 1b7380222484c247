package interfaces

import (
	"context"

	"github.com/cyffff/riskai/pkg/domain/model"
)

// FeatureFilter narrows a feature listing. Nil fields match everything.
type FeatureFilter struct {
	IsActive *bool
	Tag      string
	Search   string
}

type FeatureRepository interface {
	// Create creates a new feature with auto-generated ID
	Create(ctx context.Context, feature *model.Feature) (*model.Feature, error)

	// Get retrieves a feature by ID
	Get(ctx context.Context, id int64) (*model.Feature, error)

	// GetByName retrieves a feature by its unique name
	GetByName(ctx context.Context, name string) (*model.Feature, error)

	// List retrieves features matching the filter, ordered by ID, with
	// offset/limit pagination. Returns the page and the total match count.
	List(ctx context.Context, filter FeatureFilter, offset, limit int) ([]*model.Feature, int, error)

	// Update updates an existing feature
	Update(ctx context.Context, feature *model.Feature) (*model.Feature, error)

	// SaveValue inserts or replaces the value for a (feature, entity) pair
	SaveValue(ctx context.Context, value *model.FeatureValue) (*model.FeatureValue, error)

	// ListValues retrieves all stored values for a feature
	ListValues(ctx context.Context, featureID int64) ([]*model.FeatureValue, error)

	// GetValue retrieves the stored value for a (feature, entity) pair
	GetValue(ctx context.Context, featureID int64, entityID string) (*model.FeatureValue, error)
}
