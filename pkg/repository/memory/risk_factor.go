package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/repository"
)

type riskFactorRepository struct {
	mu      sync.RWMutex
	factors map[int64]*model.RiskFactor
	nextID  int64
}

func newRiskFactorRepository() *riskFactorRepository {
	return &riskFactorRepository{
		factors: make(map[int64]*model.RiskFactor),
		nextID:  1,
	}
}

func copyRiskFactor(f *model.RiskFactor) *model.RiskFactor {
	copied := *f
	return &copied
}

func (r *riskFactorRepository) Create(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyRiskFactor(factor)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.factors[created.ID] = created
	return copyRiskFactor(created), nil
}

func (r *riskFactorRepository) Get(ctx context.Context, id int64) (*model.RiskFactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factor, exists := r.factors[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "risk factor not found", goerr.V("id", id))
	}

	return copyRiskFactor(factor), nil
}

func (r *riskFactorRepository) List(ctx context.Context, filter interfaces.RiskFactorFilter, offset, limit int) ([]*model.RiskFactor, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factors := make([]*model.RiskFactor, 0, len(r.factors))
	for _, factor := range r.factors {
		if filter.FeatureID != nil && factor.FeatureID != *filter.FeatureID {
			continue
		}
		if filter.IsActive != nil && factor.IsActive != *filter.IsActive {
			continue
		}
		factors = append(factors, copyRiskFactor(factor))
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].ID < factors[j].ID })

	total := len(factors)
	if offset >= total {
		return []*model.RiskFactor{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return factors[offset:end], total, nil
}

func (r *riskFactorRepository) Update(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.factors[factor.ID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "risk factor not found", goerr.V("id", factor.ID))
	}

	updated := copyRiskFactor(factor)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.factors[updated.ID] = updated
	return copyRiskFactor(updated), nil
}

func (r *riskFactorRepository) ListActive(ctx context.Context) ([]*model.RiskFactor, error) {
	active := true
	factors, _, err := r.List(ctx, interfaces.RiskFactorFilter{IsActive: &active}, 0, 0)
	return factors, err
}

func (r *riskFactorRepository) DeactivateByFeature(ctx context.Context, featureID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	now := time.Now().UTC()
	for _, factor := range r.factors {
		if factor.FeatureID == featureID && factor.IsActive {
			factor.IsActive = false
			factor.UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}
