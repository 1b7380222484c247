package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[string]*model.RiskAssessment
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[string]*model.RiskAssessment),
	}
}

func copyAssessment(a *model.RiskAssessment) *model.RiskAssessment {
	copied := *a
	if len(a.Factors) > 0 {
		copied.Factors = make([]model.FactorScore, len(a.Factors))
		copy(copied.Factors, a.Factors)
	}
	if len(a.Metadata) > 0 {
		copied.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAssessment(assessment)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.AssessedAt.IsZero() {
		created.AssessedAt = time.Now().UTC()
	}

	r.assessments[created.ID] = created
	return copyAssessment(created), nil
}

func (r *assessmentRepository) ListByCustomer(ctx context.Context, customerID string, rng interfaces.AssessmentRange, limit int) ([]*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.RiskAssessment, 0)
	for _, assessment := range r.assessments {
		if assessment.CustomerID == customerID && rng.Contains(assessment.AssessedAt) {
			results = append(results, copyAssessment(assessment))
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].AssessedAt.After(results[j].AssessedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *assessmentRepository) List(ctx context.Context, rng interfaces.AssessmentRange) ([]*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.RiskAssessment, 0, len(r.assessments))
	for _, assessment := range r.assessments {
		if rng.Contains(assessment.AssessedAt) {
			results = append(results, copyAssessment(assessment))
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].AssessedAt.After(results[j].AssessedAt)
	})

	return results, nil
}
