package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
	"github.com/cyffff/riskai/pkg/repository"
)

type featureDocument struct {
	ID              int64     `firestore:"id"`
	Name            string    `firestore:"name"`
	Description     string    `firestore:"description"`
	DataType        string    `firestore:"data_type"`
	Min             *float64  `firestore:"min,omitempty"`
	Max             *float64  `firestore:"max,omitempty"`
	Categories      []string  `firestore:"categories,omitempty"`
	MaxLength       *int      `firestore:"max_length,omitempty"`
	IsActive        bool      `firestore:"is_active"`
	ImportanceScore *float64  `firestore:"importance_score,omitempty"`
	Tags            []string  `firestore:"tags,omitempty"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

// featureValueDocument keeps the value JSON-encoded so heterogeneous types
// survive the firestore round trip unchanged.
type featureValueDocument struct {
	FeatureID int64     `firestore:"feature_id"`
	EntityID  string    `firestore:"entity_id"`
	Value     string    `firestore:"value"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func featureToDocument(f *model.Feature) *featureDocument {
	return &featureDocument{
		ID:              f.ID,
		Name:            f.Name,
		Description:     f.Description,
		DataType:        f.DataType.String(),
		Min:             f.Constraints.Min,
		Max:             f.Constraints.Max,
		Categories:      f.Constraints.Categories,
		MaxLength:       f.Constraints.MaxLength,
		IsActive:        f.IsActive,
		ImportanceScore: f.ImportanceScore,
		Tags:            f.Tags,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

func documentToFeature(d *featureDocument) *model.Feature {
	return &model.Feature{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		DataType:    types.DataType(d.DataType),
		Constraints: model.Constraints{
			Min:        d.Min,
			Max:        d.Max,
			Categories: d.Categories,
			MaxLength:  d.MaxLength,
		},
		IsActive:        d.IsActive,
		ImportanceScore: d.ImportanceScore,
		Tags:            d.Tags,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type featureRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFeatureRepository(client *firestore.Client) *featureRepository {
	return &featureRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *featureRepository) featuresCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_features"
	}
	return "features"
}

func (r *featureRepository) valuesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_feature_values"
	}
	return "feature_values"
}

func (r *featureRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

// nameTaken checks inside the transaction whether another feature already
// holds the name. The transactional read keeps concurrent creates and
// renames from both passing the check.
func (r *featureRepository) nameTaken(tx *firestore.Transaction, name string, selfID int64) (bool, error) {
	iter := tx.Documents(r.client.Collection(r.featuresCollection()).Where("name", "==", name).Limit(1))
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to query feature name", goerr.V("name", name))
	}

	var featureDoc featureDocument
	if err := doc.DataTo(&featureDoc); err != nil {
		return false, goerr.Wrap(err, "failed to unmarshal feature", goerr.V("name", name))
	}
	return featureDoc.ID != selfID, nil
}

func (r *featureRepository) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc("feature_counter")

	var created *featureDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := r.nameTaken(tx, feature.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return goerr.Wrap(repository.ErrConflict, "feature name already registered", goerr.V("name", feature.Name))
		}

		nextID := int64(1)
		counterDoc, err := tx.Get(counterRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get counter")
		}
		if err == nil {
			currentValue, err := counterDoc.DataAt("value")
			if err != nil {
				return goerr.Wrap(err, "failed to get counter value")
			}
			nextID = currentValue.(int64) + 1
		}

		now := time.Now().UTC()
		doc := featureToDocument(feature)
		doc.ID = nextID
		doc.CreatedAt = now
		doc.UpdatedAt = now

		if err := tx.Set(counterRef, map[string]interface{}{"value": nextID}); err != nil {
			return goerr.Wrap(err, "failed to update counter")
		}

		docRef := r.client.Collection(r.featuresCollection()).Doc(fmt.Sprintf("%d", nextID))
		if err := tx.Set(docRef, doc); err != nil {
			return goerr.Wrap(err, "failed to create feature")
		}

		created = doc
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create feature", goerr.V("name", feature.Name))
	}

	return documentToFeature(created), nil
}

func (r *featureRepository) Get(ctx context.Context, id int64) (*model.Feature, error) {
	docRef := r.client.Collection(r.featuresCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V("id", id))
	}

	var featureDoc featureDocument
	if err := doc.DataTo(&featureDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal feature", goerr.V("id", id))
	}

	return documentToFeature(&featureDoc), nil
}

func (r *featureRepository) GetByName(ctx context.Context, name string) (*model.Feature, error) {
	iter := r.client.Collection(r.featuresCollection()).Where("name", "==", name).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query feature", goerr.V("name", name))
	}

	var featureDoc featureDocument
	if err := doc.DataTo(&featureDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal feature", goerr.V("name", name))
	}

	return documentToFeature(&featureDoc), nil
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
	iter := r.client.Collection(r.featuresCollection()).Documents(ctx)
	defer iter.Stop()

	var matched []*model.Feature
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate features")
		}

		var featureDoc featureDocument
		if err := doc.DataTo(&featureDoc); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal feature")
		}

		feature := documentToFeature(&featureDoc)
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

	return matched[offset:end], total, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	docRef := r.client.Collection(r.featuresCollection()).Doc(fmt.Sprintf("%d", feature.ID))

	var updated *featureDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(repository.ErrNotFound, "feature not found", goerr.V("id", feature.ID))
			}
			return goerr.Wrap(err, "failed to get feature", goerr.V("id", feature.ID))
		}

		var existing featureDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal feature", goerr.V("id", feature.ID))
		}

		if feature.Name != existing.Name {
			taken, err := r.nameTaken(tx, feature.Name, feature.ID)
			if err != nil {
				return err
			}
			if taken {
				return goerr.Wrap(repository.ErrConflict, "feature name already registered", goerr.V("name", feature.Name))
			}
		}

		next := featureToDocument(feature)
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, next); err != nil {
			return goerr.Wrap(err, "failed to update feature", goerr.V("id", feature.ID))
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return documentToFeature(updated), nil
}

func (r *featureRepository) valueDocID(featureID int64, entityID string) string {
	return fmt.Sprintf("%d_%s", featureID, entityID)
}

func (r *featureRepository) SaveValue(ctx context.Context, value *model.FeatureValue) (*model.FeatureValue, error) {
	if _, err := r.Get(ctx, value.FeatureID); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(value.Value)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode feature value",
			goerr.V("feature_id", value.FeatureID), goerr.V("entity_id", value.EntityID))
	}

	now := time.Now().UTC()
	doc := &featureValueDocument{
		FeatureID: value.FeatureID,
		EntityID:  value.EntityID,
		Value:     string(encoded),
		CreatedAt: now,
		UpdatedAt: now,
	}

	docRef := r.client.Collection(r.valuesCollection()).Doc(r.valueDocID(value.FeatureID, value.EntityID))
	if prev, err := docRef.Get(ctx); err == nil {
		var prevDoc featureValueDocument
		if err := prev.DataTo(&prevDoc); err == nil {
			doc.CreatedAt = prevDoc.CreatedAt
		}
	}

	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to save feature value",
			goerr.V("feature_id", value.FeatureID), goerr.V("entity_id", value.EntityID))
	}

	return documentToFeatureValue(doc)
}

func documentToFeatureValue(d *featureValueDocument) (*model.FeatureValue, error) {
	var v model.Value
	if err := json.Unmarshal([]byte(d.Value), &v); err != nil {
		return nil, goerr.Wrap(err, "failed to decode feature value",
			goerr.V("feature_id", d.FeatureID), goerr.V("entity_id", d.EntityID))
	}

	return &model.FeatureValue{
		FeatureID: d.FeatureID,
		EntityID:  d.EntityID,
		Value:     v,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (r *featureRepository) ListValues(ctx context.Context, featureID int64) ([]*model.FeatureValue, error) {
	iter := r.client.Collection(r.valuesCollection()).Where("feature_id", "==", featureID).Documents(ctx)
	defer iter.Stop()

	values := make([]*model.FeatureValue, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate feature values", goerr.V("feature_id", featureID))
		}

		var valueDoc featureValueDocument
		if err := doc.DataTo(&valueDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal feature value", goerr.V("feature_id", featureID))
		}

		value, err := documentToFeatureValue(&valueDoc)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].EntityID < values[j].EntityID })

	return values, nil
}

func (r *featureRepository) GetValue(ctx context.Context, featureID int64, entityID string) (*model.FeatureValue, error) {
	docRef := r.client.Collection(r.valuesCollection()).Doc(r.valueDocID(featureID, entityID))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "feature value not found",
				goerr.V("feature_id", featureID), goerr.V("entity_id", entityID))
		}
		return nil, goerr.Wrap(err, "failed to get feature value",
			goerr.V("feature_id", featureID), goerr.V("entity_id", entityID))
	}

	var valueDoc featureValueDocument
	if err := doc.DataTo(&valueDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal feature value",
			goerr.V("feature_id", featureID), goerr.V("entity_id", entityID))
	}

	return documentToFeatureValue(&valueDoc)
}
