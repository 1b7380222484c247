package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/repository"
)

type featureValueKey struct {
	FeatureID int64
	EntityID  string
}

type featureRepository struct {
	mu       sync.RWMutex
	features map[int64]*model.Feature
	names    map[string]int64
	values   map[featureValueKey]*model.FeatureValue
	nextID   int64
}

func newFeatureRepository() *featureRepository {
	return &featureRepository{
		features: make(map[int64]*model.Feature),
		names:    make(map[string]int64),
		values:   make(map[featureValueKey]*model.FeatureValue),
		nextID:   1,
	}
}

func copyFeature(f *model.Feature) *model.Feature {
	copied := &model.Feature{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		DataType:    f.DataType,
		Constraints: f.Constraints,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.ImportanceScore != nil {
		score := *f.ImportanceScore
		copied.ImportanceScore = &score
	}
	if len(f.Tags) > 0 {
		copied.Tags = make([]string, len(f.Tags))
		copy(copied.Tags, f.Tags)
	}
	if len(f.Constraints.Categories) > 0 {
		cats := make([]string, len(f.Constraints.Categories))
		copy(cats, f.Constraints.Categories)
		copied.Constraints.Categories = cats
	}
	return copied
}

func (r *featureRepository) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[feature.Name]; exists {
		return nil, goerr.Wrap(repository.ErrConflict, "feature name already registered", goerr.V("name", feature.Name))
	}

	now := time.Now().UTC()
	created := copyFeature(feature)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.features[created.ID] = created
	r.names[created.Name] = created.ID
	return copyFeature(created), nil
}

func (r *featureRepository) Get(ctx context.Context, id int64) (*model.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, exists := r.features[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return copyFeature(feature), nil
}

func (r *featureRepository) GetByName(ctx context.Context, name string) (*model.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.names[name]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("name", name))
	}

	return copyFeature(r.features[id]), nil
}

func matchFeature(f *model.Feature, filter interfaces.FeatureFilter) bool {
	if filter.IsActive != nil && f.IsActive != *filter.IsActive {
		return false
	}
	if filter.Tag != "" && !f.HasTag(filter.Tag) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(f.Name), needle) &&
			!strings.Contains(strings.ToLower(f.Description), needle) {
			return false
		}
	}
	return true
}

func (r *featureRepository) List(ctx context.Context, filter interfaces.FeatureFilter, offset, limit int) ([]*model.Feature, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Feature, 0, len(r.features))
	for _, feature := range r.features {
		if matchFeature(feature, filter) {
			matched = append(matched, feature)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset >= total {
		return []*model.Feature{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]*model.Feature, 0, end-offset)
	for _, feature := range matched[offset:end] {
		page = append(page, copyFeature(feature))
	}
	return page, total, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.features[feature.ID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("id", feature.ID))
	}
	if feature.Name != existing.Name {
		if _, taken := r.names[feature.Name]; taken {
			return nil, goerr.Wrap(repository.ErrConflict, "feature name already registered", goerr.V("name", feature.Name))
		}
	}

	updated := copyFeature(feature)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	delete(r.names, existing.Name)
	r.features[updated.ID] = updated
	r.names[updated.Name] = updated.ID
	return copyFeature(updated), nil
}

func (r *featureRepository) SaveValue(ctx context.Context, value *model.FeatureValue) (*model.FeatureValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[value.FeatureID]; !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("id", value.FeatureID))
	}

	now := time.Now().UTC()
	key := featureValueKey{FeatureID: value.FeatureID, EntityID: value.EntityID}
	saved := &model.FeatureValue{
		FeatureID: value.FeatureID,
		EntityID:  value.EntityID,
		Value:     value.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, exists := r.values[key]; exists {
		saved.CreatedAt = prev.CreatedAt
	}

	r.values[key] = saved
	copied := *saved
	return &copied, nil
}

func (r *featureRepository) ListValues(ctx context.Context, featureID int64) ([]*model.FeatureValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make([]*model.FeatureValue, 0)
	for key, fv := range r.values {
		if key.FeatureID == featureID {
			copied := *fv
			values = append(values, &copied)
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].EntityID < values[j].EntityID })

	return values, nil
}

func (r *featureRepository) GetValue(ctx context.Context, featureID int64, entityID string) (*model.FeatureValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fv, exists := r.values[featureValueKey{FeatureID: featureID, EntityID: entityID}]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature value not found",
			goerr.V("feature_id", featureID), goerr.V("entity_id", entityID))
	}

	copied := *fv
	return &copied, nil
}
