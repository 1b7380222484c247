package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Feature() FeatureRepository
	RiskFactor() RiskFactorRepository
	Assessment() AssessmentRepository

	Close() error
}
