package firestore

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
	"github.com/cyffff/riskai/pkg/domain/model"
	"github.com/cyffff/riskai/pkg/domain/types"
)

type factorScoreDocument struct {
	FactorID  int64   `firestore:"factor_id"`
	FeatureID int64   `firestore:"feature_id"`
	Triggered bool    `firestore:"triggered"`
	Score     float64 `firestore:"score"`
	MaxScore  float64 `firestore:"max_score"`
}

// assessmentDocument keeps metadata JSON-encoded so arbitrary nested values
// survive the firestore round trip unchanged.
type assessmentDocument struct {
	ID         string                `firestore:"id"`
	CustomerID string                `firestore:"customer_id"`
	RiskScore  float64               `firestore:"risk_score"`
	RiskLevel  string                `firestore:"risk_level"`
	Factors    []factorScoreDocument `firestore:"factors"`
	Metadata   string                `firestore:"metadata,omitempty"`
	AssessedAt time.Time             `firestore:"assessed_at"`
}

func assessmentToDocument(a *model.RiskAssessment) (*assessmentDocument, error) {
	factors := make([]factorScoreDocument, 0, len(a.Factors))
	for _, f := range a.Factors {
		factors = append(factors, factorScoreDocument{
			FactorID:  f.FactorID,
			FeatureID: f.FeatureID,
			Triggered: f.Triggered,
			Score:     f.Score,
			MaxScore:  f.MaxScore,
		})
	}

	metadata := ""
	if len(a.Metadata) > 0 {
		encoded, err := json.Marshal(a.Metadata)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode assessment metadata", goerr.V("id", a.ID))
		}
		metadata = string(encoded)
	}

	return &assessmentDocument{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		RiskScore:  a.RiskScore,
		RiskLevel:  a.RiskLevel.String(),
		Factors:    factors,
		Metadata:   metadata,
		AssessedAt: a.AssessedAt,
	}, nil
}

func documentToAssessment(d *assessmentDocument) (*model.RiskAssessment, error) {
	factors := make([]model.FactorScore, 0, len(d.Factors))
	for _, f := range d.Factors {
		factors = append(factors, model.FactorScore{
			FactorID:  f.FactorID,
			FeatureID: f.FeatureID,
			Triggered: f.Triggered,
			Score:     f.Score,
			MaxScore:  f.MaxScore,
		})
	}

	var metadata map[string]any
	if d.Metadata != "" {
		if err := json.Unmarshal([]byte(d.Metadata), &metadata); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assessment metadata", goerr.V("id", d.ID))
		}
	}

	return &model.RiskAssessment{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		RiskScore:  d.RiskScore,
		RiskLevel:  types.RiskLevel(d.RiskLevel),
		Factors:    factors,
		Metadata:   metadata,
		AssessedAt: d.AssessedAt,
	}, nil
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *assessmentRepository) assessmentsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_assessments"
	}
	return "assessments"
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error) {
	doc, err := assessmentToDocument(assessment)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.AssessedAt.IsZero() {
		doc.AssessedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.assessmentsCollection()).Doc(doc.ID)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V("customer_id", doc.CustomerID))
	}

	return documentToAssessment(doc)
}

func (r *assessmentRepository) ListByCustomer(ctx context.Context, customerID string, rng interfaces.AssessmentRange, limit int) ([]*model.RiskAssessment, error) {
	iter := r.client.Collection(r.assessmentsCollection()).Where("customer_id", "==", customerID).Documents(ctx)
	defer iter.Stop()

	results, err := r.collect(iter, rng)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments", goerr.V("customer_id", customerID))
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *assessmentRepository) List(ctx context.Context, rng interfaces.AssessmentRange) ([]*model.RiskAssessment, error) {
	iter := r.client.Collection(r.assessmentsCollection()).Documents(ctx)
	defer iter.Stop()

	results, err := r.collect(iter, rng)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments")
	}
	return results, nil
}

// collect filters the range client-side so no composite index on
// (customer_id, assessed_at) is needed.
func (r *assessmentRepository) collect(iter *firestore.DocumentIterator, rng interfaces.AssessmentRange) ([]*model.RiskAssessment, error) {
	results := make([]*model.RiskAssessment, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var assessmentDoc assessmentDocument
		if err := doc.DataTo(&assessmentDoc); err != nil {
			return nil, err
		}
		if !rng.Contains(assessmentDoc.AssessedAt) {
			continue
		}

		assessment, err := documentToAssessment(&assessmentDoc)
		if err != nil {
			return nil, err
		}
		results = append(results, assessment)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].AssessedAt.After(results[j].AssessedAt)
	})

	return results, nil
}
