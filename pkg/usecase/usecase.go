package usecase

import (
	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
)

type UseCases struct {
	repo            interfaces.Repository
	policy          model.ScorePolicy
	valueProvider   interfaces.FeatureValueProvider
	insightProvider interfaces.FeatureInsightProvider

	Feature    *FeatureUseCase
	RiskFactor *RiskFactorUseCase
	Assessment *AssessmentUseCase
}

type Option func(*UseCases)

// WithPolicy overrides the default score classification thresholds.
func WithPolicy(policy model.ScorePolicy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithValueProvider plugs in an upstream source for feature values that were
// not supplied with an assessment request.
func WithValueProvider(provider interfaces.FeatureValueProvider) Option {
	return func(uc *UseCases) {
		uc.valueProvider = provider
	}
}

// WithInsightProvider plugs in the upstream feature analytics API.
func WithInsightProvider(provider interfaces.FeatureInsightProvider) Option {
	return func(uc *UseCases) {
		uc.insightProvider = provider
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		policy: model.DefaultScorePolicy(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Feature = NewFeatureUseCase(repo, uc.insightProvider)
	uc.RiskFactor = NewRiskFactorUseCase(repo)
	uc.Assessment = NewAssessmentUseCase(repo, uc.policy, uc.valueProvider)

	return uc
}
