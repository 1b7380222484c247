package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

type RiskFactorUseCase struct {
	repo interfaces.Repository
}

func NewRiskFactorUseCase(repo interfaces.Repository) *RiskFactorUseCase {
	return &RiskFactorUseCase{repo: repo}
}

// Create validates a factor against its referenced feature and stores it.
// The feature must exist and be active, and the operator must be applicable
// to the feature's data type.
func (uc *RiskFactorUseCase) Create(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error) {
	feature, err := uc.repo.Feature().Get(ctx, factor.FeatureID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrFeatureNotFound, "referenced feature does not exist",
				goerr.V("feature_id", factor.FeatureID))
		}
		return nil, goerr.Wrap(err, "failed to look up referenced feature")
	}
	if !feature.IsActive {
		return nil, goerr.Wrap(ErrValidation, "referenced feature is inactive",
			goerr.V("feature_id", factor.FeatureID), goerr.V("feature", feature.Name))
	}

	if err := factor.ValidateAgainst(feature); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error(), goerr.V("feature", feature.Name))
	}

	created, err := uc.repo.RiskFactor().Create(ctx, factor)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk factor")
	}

	logging.From(ctx).Info("risk factor registered",
		"id", created.ID, "feature", feature.Name,
		"operator", created.Operator, "weight", created.Weight)
	return created, nil
}

func (uc *RiskFactorUseCase) Get(ctx context.Context, id int64) (*model.RiskFactor, error) {
	factor, err := uc.repo.RiskFactor().Get(ctx, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrRiskFactorNotFound, "no such risk factor", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk factor", goerr.V("id", id))
	}
	return factor, nil
}

// RiskFactorList is one page of a risk factor listing.
type RiskFactorList struct {
	Items    []*model.RiskFactor `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

func (uc *RiskFactorUseCase) List(ctx context.Context, filter interfaces.RiskFactorFilter, page, pageSize int) (*RiskFactorList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := uc.repo.RiskFactor().List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk factors")
	}

	return &RiskFactorList{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// RiskFactorUpdate is a partial update: nil fields are left unchanged.
// FeatureID is immutable once created.
type RiskFactorUpdate struct {
	Weight      *float64
	Threshold   *model.Value
	Operator    *string
	RiskLevel   *string
	Description *string
	IsActive    *bool
}

func (uc *RiskFactorUseCase) Update(ctx context.Context, id int64, patch RiskFactorUpdate) (*model.RiskFactor, error) {
	factor, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Weight != nil {
		factor.Weight = *patch.Weight
	}
	if patch.Threshold != nil {
		factor.Threshold = *patch.Threshold
	}
	if patch.Operator != nil {
		factor.Operator = types.Operator(*patch.Operator)
	}
	if patch.RiskLevel != nil {
		factor.RiskLevel = types.RiskLevel(*patch.RiskLevel)
	}
	if patch.Description != nil {
		factor.Description = *patch.Description
	}
	if patch.IsActive != nil {
		factor.IsActive = *patch.IsActive
	}

	feature, err := uc.repo.Feature().Get(ctx, factor.FeatureID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up referenced feature",
			goerr.V("feature_id", factor.FeatureID))
	}
	if err := factor.ValidateAgainst(feature); err != nil {
		return nil, goerr.Wrap(ErrValidation, err.Error(), goerr.V("id", id))
	}

	updated, err := uc.repo.RiskFactor().Update(ctx, factor)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk factor", goerr.V("id", id))
	}
	return updated, nil
}
