package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/repository"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type FeatureUseCase struct {
	repo    interfaces.Repository
	insight interfaces.FeatureInsightProvider
}

func NewFeatureUseCase(repo interfaces.Repository, insight interfaces.FeatureInsightProvider) *FeatureUseCase {
	return &FeatureUseCase{
		repo:    repo,
		insight: insight,
	}
}

func isRepoNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func isRepoConflict(err error) bool {
	return errors.Is(err, repository.ErrConflict)
}

func (uc *FeatureUseCase) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	feature.Name = strings.TrimSpace(feature.Name)
	if err := feature.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error(), goerr.V("name", feature.Name))
	}

	created, err := uc.repo.Feature().Create(ctx, feature)
	if err != nil {
		if isRepoConflict(err) {
			return nil, goerr.Wrap(ErrDuplicateFeature, "feature name taken", goerr.V("name", feature.Name))
		}
		return nil, goerr.Wrap(err, "failed to create feature")
	}

	logging.From(ctx).Info("feature registered",
		"id", created.ID, "name", created.Name, "data_type", created.DataType)
	return created, nil
}

func (uc *FeatureUseCase) Get(ctx context.Context, id int64) (*model.Feature, error) {
	feature, err := uc.repo.Feature().Get(ctx, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrFeatureNotFound, "no such feature", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V("id", id))
	}
	return feature, nil
}

func (uc *FeatureUseCase) GetByName(ctx context.Context, name string) (*model.Feature, error) {
	feature, err := uc.repo.Feature().GetByName(ctx, name)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrFeatureNotFound, "no such feature", goerr.V("name", name))
		}
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V("name", name))
	}
	return feature, nil
}

// FeatureList is one page of a feature listing.
type FeatureList struct {
	Items    []*model.Feature `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (uc *FeatureUseCase) List(ctx context.Context, filter interfaces.FeatureFilter, page, pageSize int) (*FeatureList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := uc.repo.Feature().List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list features")
	}

	return &FeatureList{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// FeatureUpdate is a partial update: nil fields are left unchanged.
type FeatureUpdate struct {
	Description     *string
	Constraints     *model.Constraints
	IsActive        *bool
	ImportanceScore *float64
	Tags            []string
}

func (uc *FeatureUseCase) Update(ctx context.Context, id int64, patch FeatureUpdate) (*model.Feature, error) {
	feature, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		feature.Description = *patch.Description
	}
	if patch.Constraints != nil {
		feature.Constraints = *patch.Constraints
	}
	if patch.IsActive != nil {
		feature.IsActive = *patch.IsActive
	}
	if patch.ImportanceScore != nil {
		feature.ImportanceScore = patch.ImportanceScore
	}
	if patch.Tags != nil {
		feature.Tags = patch.Tags
	}

	if err := feature.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error(), goerr.V("id", id))
	}

	updated, err := uc.repo.Feature().Update(ctx, feature)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update feature", goerr.V("id", id))
	}
	return updated, nil
}

// Deactivate soft-deletes a feature and deactivates every risk factor that
// references it. Stored values are retained. Returns the number of factors
// that were deactivated.
func (uc *FeatureUseCase) Deactivate(ctx context.Context, id int64) (int, error) {
	feature, err := uc.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	if feature.IsActive {
		feature.IsActive = false
		if _, err := uc.repo.Feature().Update(ctx, feature); err != nil {
			return 0, goerr.Wrap(err, "failed to deactivate feature", goerr.V("id", id))
		}
	}

	deactivated, err := uc.repo.RiskFactor().DeactivateByFeature(ctx, id)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to deactivate dependent risk factors", goerr.V("id", id))
	}

	logging.From(ctx).Info("feature deactivated",
		"id", id, "name", feature.Name, "deactivated_factors", deactivated)
	return deactivated, nil
}

// ValidateValue checks a raw value against a feature's constraints without
// storing it. All violations are reported, not just the first.
func (uc *FeatureUseCase) ValidateValue(ctx context.Context, id int64, raw any) (*model.ValidationResult, error) {
	feature, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	value, err := model.ValueFrom(raw)
	if err != nil {
		return &model.ValidationResult{
			IsValid: false,
			Errors:  []string{err.Error()},
		}, nil
	}

	result := model.ValidateFeatureValue(feature, value)
	return &result, nil
}

// SetValue validates and then upserts a value for a (feature, entity) pair.
// Invalid values are rejected with the full violation list attached.
func (uc *FeatureUseCase) SetValue(ctx context.Context, id int64, entityID string, raw any) (*model.FeatureValue, error) {
	if entityID == "" {
		return nil, goerr.Wrap(ErrValidation, "entity ID is required")
	}

	feature, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	value, err := model.ValueFrom(raw)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidValue, err.Error(), goerr.V("feature", feature.Name))
	}

	if result := model.ValidateFeatureValue(feature, value); !result.IsValid {
		return nil, goerr.Wrap(ErrInvalidValue, "value rejected",
			goerr.V("feature", feature.Name),
			goerr.V("violations", result.Errors))
	}

	saved, err := uc.repo.Feature().SaveValue(ctx, &model.FeatureValue{
		FeatureID: feature.ID,
		EntityID:  entityID,
		Value:     value,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save feature value",
			goerr.V("feature", feature.Name), goerr.V("entity_id", entityID))
	}
	return saved, nil
}

func (uc *FeatureUseCase) ListValues(ctx context.Context, id int64) ([]*model.FeatureValue, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}

	values, err := uc.repo.Feature().ListValues(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feature values", goerr.V("id", id))
	}
	return values, nil
}

// SyncImportance fetches the importance ranking from the upstream feature
// platform and writes the scores back onto matching features. Features the
// platform does not know keep their current score.
func (uc *FeatureUseCase) SyncImportance(ctx context.Context) ([]model.FeatureImportance, error) {
	if uc.insight == nil {
		return nil, goerr.New("feature insight provider is not configured")
	}

	ranking, err := uc.insight.Importance(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch feature importance")
	}

	logger := logging.From(ctx)
	for _, entry := range ranking {
		feature, err := uc.repo.Feature().GetByName(ctx, entry.FeatureName)
		if err != nil {
			if isRepoNotFound(err) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to look up feature", goerr.V("name", entry.FeatureName))
		}

		score := entry.Importance
		feature.ImportanceScore = &score
		if _, err := uc.repo.Feature().Update(ctx, feature); err != nil {
			logger.Warn("failed to store importance score",
				"feature", entry.FeatureName, "error", err)
		}
	}

	return ranking, nil
}

func (uc *FeatureUseCase) Metrics(ctx context.Context, featureName string) (*model.FeatureMetrics, error) {
	if uc.insight == nil {
		return nil, goerr.New("feature insight provider is not configured")
	}

	metrics, err := uc.insight.Metrics(ctx, featureName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch feature metrics", goerr.V("name", featureName))
	}
	return metrics, nil
}
