package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/utils/logging"
)

type AssessmentUseCase struct {
	repo     interfaces.Repository
	policy   model.ScorePolicy
	provider interfaces.FeatureValueProvider
}

func NewAssessmentUseCase(repo interfaces.Repository, policy model.ScorePolicy, provider interfaces.FeatureValueProvider) *AssessmentUseCase {
	return &AssessmentUseCase{
		repo:     repo,
		policy:   policy,
		provider: provider,
	}
}

// AssessInput is one scoring request. Features maps feature name to a raw
// value; features not supplied here may still be resolved through the
// configured value provider.
type AssessInput struct {
	CustomerID string
	Features   map[string]any
	Metadata   map[string]any
}

// Assess runs every active risk factor against the supplied feature values,
// normalizes the earned weight to a 0-100 score and stores the result.
//
// Only factors whose feature value is actually available contribute to the
// denominator: a factor with no value at hand neither raises nor lowers the
// score. With no evaluable factor at all the score is 0.
func (uc *AssessmentUseCase) Assess(ctx context.Context, input AssessInput) (*model.RiskAssessment, error) {
	if input.CustomerID == "" {
		return nil, goerr.Wrap(ErrValidation, "customer ID is required")
	}

	factors, err := uc.repo.RiskFactor().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load active risk factors")
	}

	logger := logging.From(ctx)

	var totalScore, maxPossible float64
	var breakdown []model.FactorScore

	// Feature lookups are cached per request: several factors may share one
	// feature.
	featureByID := make(map[int64]*model.Feature)
	valueByName := make(map[string]model.Value)

	for name, raw := range input.Features {
		value, err := model.ValueFrom(raw)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidValue, err.Error(), goerr.V("feature", name))
		}
		valueByName[name] = value
	}

	for _, factor := range factors {
		feature, ok := featureByID[factor.FeatureID]
		if !ok {
			feature, err = uc.repo.Feature().Get(ctx, factor.FeatureID)
			if err != nil {
				if isRepoNotFound(err) {
					logger.Warn("active factor references missing feature",
						"factor_id", factor.ID, "feature_id", factor.FeatureID)
					continue
				}
				return nil, goerr.Wrap(err, "failed to load factor feature",
					goerr.V("factor_id", factor.ID))
			}
			featureByID[factor.FeatureID] = feature
		}
		if !feature.IsActive {
			continue
		}

		value, supplied := valueByName[feature.Name]
		if !supplied && uc.provider != nil {
			fetched, found, err := uc.provider.FetchValue(ctx, feature.Name, input.CustomerID)
			if err != nil {
				logger.Warn("value provider lookup failed, skipping factor",
					"feature", feature.Name, "factor_id", factor.ID, "error", err)
			} else if found {
				value = fetched
				supplied = true
				valueByName[feature.Name] = fetched
			}
		}
		if !supplied {
			continue
		}

		triggered := model.EvaluateFactor(factor.Operator, value, factor.Threshold)
		score := 0.0
		if triggered {
			score = factor.Weight
		}

		totalScore += score
		maxPossible += factor.Weight
		breakdown = append(breakdown, model.FactorScore{
			FactorID:  factor.ID,
			FeatureID: factor.FeatureID,
			Triggered: triggered,
			Score:     score,
			MaxScore:  factor.Weight,
		})
	}

	normalized := 0.0
	if maxPossible > 0 {
		normalized = totalScore / maxPossible * 100
	}

	assessment := &model.RiskAssessment{
		CustomerID: input.CustomerID,
		RiskScore:  normalized,
		RiskLevel:  uc.policy.Classify(normalized),
		Factors:    breakdown,
		Metadata:   input.Metadata,
	}

	created, err := uc.repo.Assessment().Create(ctx, assessment)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store assessment",
			goerr.V("customer_id", input.CustomerID))
	}

	logger.Info("customer assessed",
		"customer_id", created.CustomerID,
		"score", created.RiskScore,
		"level", created.RiskLevel,
		"evaluated_factors", len(breakdown))
	return created, nil
}

// History returns a customer's stored assessments within the range, newest
// first.
func (uc *AssessmentUseCase) History(ctx context.Context, customerID string, rng interfaces.AssessmentRange, limit int) ([]*model.RiskAssessment, error) {
	if customerID == "" {
		return nil, goerr.Wrap(ErrValidation, "customer ID is required")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	assessments, err := uc.repo.Assessment().ListByCustomer(ctx, customerID, rng, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load assessment history",
			goerr.V("customer_id", customerID))
	}
	return assessments, nil
}

func validateRange(rng interfaces.AssessmentRange) error {
	if rng.Since != nil && rng.Until != nil && rng.Until.Before(*rng.Since) {
		return goerr.Wrap(ErrValidation, "range end must not precede range start",
			goerr.V("since", *rng.Since), goerr.V("until", *rng.Until))
	}
	return nil
}

// Stats aggregates the stored assessments within the range in a single pass.
func (uc *AssessmentUseCase) Stats(ctx context.Context, rng interfaces.AssessmentRange) (*model.AssessmentStats, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	assessments, err := uc.repo.Assessment().List(ctx, rng)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load assessments")
	}

	stats := &model.AssessmentStats{
		LevelCounts: make(map[types.RiskLevel]int),
	}
	if len(assessments) == 0 {
		return stats, nil
	}

	customers := make(map[string]struct{})
	var sum float64
	stats.MinScore = assessments[0].RiskScore
	stats.MaxScore = assessments[0].RiskScore

	for _, a := range assessments {
		sum += a.RiskScore
		if a.RiskScore < stats.MinScore {
			stats.MinScore = a.RiskScore
		}
		if a.RiskScore > stats.MaxScore {
			stats.MaxScore = a.RiskScore
		}
		// Re-classify with the current policy so stats stay consistent even
		// if thresholds changed after older assessments were stored.
		stats.LevelCounts[uc.policy.Classify(a.RiskScore)]++
		customers[a.CustomerID] = struct{}{}
	}

	stats.TotalAssessments = len(assessments)
	stats.AverageScore = sum / float64(len(assessments))
	stats.UniqueCustomers = len(customers)
	return stats, nil
}
