package interfaces

import (
	"context"
	"time"

	"github.com/cyffff/riskai/pkg/domain/model"
)

// AssessmentRange bounds a listing by assessment time. Nil bounds are open;
// both bounds are inclusive.
type AssessmentRange struct {
	Since *time.Time
	Until *time.Time
}

// Contains reports whether the timestamp falls inside the range.
func (r AssessmentRange) Contains(t time.Time) bool {
	if r.Since != nil && t.Before(*r.Since) {
		return false
	}
	if r.Until != nil && t.After(*r.Until) {
		return false
	}
	return true
}

type AssessmentRepository interface {
	// Create stores a completed assessment
	Create(ctx context.Context, assessment *model.RiskAssessment) (*model.RiskAssessment, error)

	// ListByCustomer retrieves assessments for a customer within the range,
	// newest first, capped at limit (0 means no cap)
	ListByCustomer(ctx context.Context, customerID string, rng AssessmentRange, limit int) ([]*model.RiskAssessment, error)

	// List retrieves all stored assessments within the range
	List(ctx context.Context, rng AssessmentRange) ([]*model.RiskAssessment, error)
}
