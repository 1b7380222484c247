package memory

import (
	"github.com/cyffff/riskai/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	feature    *featureRepository
	riskFactor *riskFactorRepository
	assessment *assessmentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		feature:    newFeatureRepository(),
		riskFactor: newRiskFactorRepository(),
		assessment: newAssessmentRepository(),
	}
}

func (m *Memory) Feature() interfaces.FeatureRepository {
	return m.feature
}

func (m *Memory) RiskFactor() interfaces.RiskFactorRepository {
	return m.riskFactor
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) Close() error {
	return nil
}
