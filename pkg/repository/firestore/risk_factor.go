package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
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

type riskFactorDocument struct {
	ID          int64     `firestore:"id"`
	FeatureID   int64     `firestore:"feature_id"`
	Weight      float64   `firestore:"weight"`
	Threshold   string    `firestore:"threshold"`
	Operator    string    `firestore:"operator"`
	RiskLevel   string    `firestore:"risk_level"`
	Description string    `firestore:"description"`
	IsActive    bool      `firestore:"is_active"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func riskFactorToDocument(f *model.RiskFactor) (*riskFactorDocument, error) {
	threshold, err := json.Marshal(f.Threshold)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode threshold", goerr.V("id", f.ID))
	}

	return &riskFactorDocument{
		ID:          f.ID,
		FeatureID:   f.FeatureID,
		Weight:      f.Weight,
		Threshold:   string(threshold),
		Operator:    f.Operator.String(),
		RiskLevel:   f.RiskLevel.String(),
		Description: f.Description,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}, nil
}

func documentToRiskFactor(d *riskFactorDocument) (*model.RiskFactor, error) {
	var threshold model.Value
	if err := json.Unmarshal([]byte(d.Threshold), &threshold); err != nil {
		return nil, goerr.Wrap(err, "failed to decode threshold", goerr.V("id", d.ID))
	}

	return &model.RiskFactor{
		ID:          d.ID,
		FeatureID:   d.FeatureID,
		Weight:      d.Weight,
		Threshold:   threshold,
		Operator:    types.Operator(d.Operator),
		RiskLevel:   types.RiskLevel(d.RiskLevel),
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type riskFactorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskFactorRepository(client *firestore.Client) *riskFactorRepository {
	return &riskFactorRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskFactorRepository) factorsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risk_factors"
	}
	return "risk_factors"
}

func (r *riskFactorRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *riskFactorRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc("risk_factor_counter")

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		nextID = currentValue.(int64) + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *riskFactorRepository) Create(ctx context.Context, factor *model.RiskFactor) (*model.RiskFactor, error) {
	id, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc, err := riskFactorToDocument(factor)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.factorsCollection()).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk factor")
	}

	return documentToRiskFactor(doc)
}

func (r *riskFactorRepository) Get(ctx context.Context, id int64) (*model.RiskFactor, error) {
	docRef := r.client.Collection(r.factorsCollection()).Doc(fmt.Sprintf("%d", id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "risk factor not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk factor", goerr.V("id", id))
	}

	var factorDoc riskFactorDocument
	if err := doc.DataTo(&factorDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk factor", goerr.V("id", id))
	}

	return documentToRiskFactor(&factorDoc)
}

func (r *riskFactorRepository) List(ctx context.Context, filter interfaces.RiskFactorFilter, offset, limit int) ([]*model.RiskFactor, int, error) {
	iter := r.client.Collection(r.factorsCollection()).Documents(ctx)
	defer iter.Stop()

	factors := make([]*model.RiskFactor, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate risk factors")
		}

		var factorDoc riskFactorDocument
		if err := doc.DataTo(&factorDoc); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal risk factor")
		}

		factor, err := documentToRiskFactor(&factorDoc)
		if err != nil {
			return nil, 0, err
		}

		if filter.FeatureID != nil && factor.FeatureID != *filter.FeatureID {
			continue
		}
		if filter.IsActive != nil && factor.IsActive != *filter.IsActive {
			continue
		}
		factors = append(factors, factor)
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
	docRef := r.client.Collection(r.factorsCollection()).Doc(fmt.Sprintf("%d", factor.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "risk factor not found", goerr.V("id", factor.ID))
		}
		return nil, goerr.Wrap(err, "failed to get risk factor", goerr.V("id", factor.ID))
	}

	var existing riskFactorDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk factor", goerr.V("id", factor.ID))
	}

	updated, err := riskFactorToDocument(factor)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk factor", goerr.V("id", factor.ID))
	}

	return documentToRiskFactor(updated)
}

func (r *riskFactorRepository) ListActive(ctx context.Context) ([]*model.RiskFactor, error) {
	active := true
	factors, _, err := r.List(ctx, interfaces.RiskFactorFilter{IsActive: &active}, 0, 0)
	return factors, err
}

func (r *riskFactorRepository) DeactivateByFeature(ctx context.Context, featureID int64) (int, error) {
	factors, _, err := r.List(ctx, interfaces.RiskFactorFilter{FeatureID: &featureID}, 0, 0)
	if err != nil {
		return 0, err
	}

	changed := 0
	now := time.Now().UTC()
	for _, factor := range factors {
		if !factor.IsActive {
			continue
		}
		docRef := r.client.Collection(r.factorsCollection()).Doc(fmt.Sprintf("%d", factor.ID))
		if _, err := docRef.Update(ctx, []firestore.Update{
			{Path: "is_active", Value: false},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return changed, goerr.Wrap(err, "failed to deactivate risk factor", goerr.V("id", factor.ID))
		}
		changed++
	}
	return changed, nil
}
