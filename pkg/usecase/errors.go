package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrFeatureNotFound    = errors.New("feature not found")
	ErrRiskFactorNotFound = errors.New("risk factor not found")

	// Validation errors
	ErrValidation   = errors.New("validation failed")
	ErrInvalidValue = errors.New("value does not satisfy feature constraints")

	// Conflict errors
	ErrDuplicateFeature = errors.New("feature name already registered")
)
