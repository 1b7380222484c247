package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	feature    *featureRepository
	riskFactor *riskFactorRepository
	assessment *assessmentRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.feature.collectionPrefix = prefix
		f.riskFactor.collectionPrefix = prefix
		f.assessment.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		feature:    newFeatureRepository(client),
		riskFactor: newRiskFactorRepository(client),
		assessment: newAssessmentRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Feature() interfaces.FeatureRepository {
	return f.feature
}

func (f *Firestore) RiskFactor() interfaces.RiskFactorRepository {
	return f.riskFactor
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
