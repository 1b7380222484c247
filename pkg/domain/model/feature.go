package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/domain/types"
)

// Feature defines a named input to risk scoring: its semantic data type,
// the constraints submitted values must satisfy, and bookkeeping flags.
// Features are soft-deleted only (IsActive=false); risk factors and stored
// values keep referencing deactivated features.
type Feature struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	DataType        types.DataType `json:"data_type"`
	Constraints     Constraints    `json:"constraints"`
	IsActive        bool           `json:"is_active"`
	ImportanceScore *float64       `json:"importance_score,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Constraints holds the type-dependent validation bounds of a feature.
// Which fields are meaningful depends on the feature's data type: Min/Max
// for numeric, Categories for categorical, MaxLength for text.
type Constraints struct {
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Categories []string `json:"categories,omitempty"`
	MaxLength  *int     `json:"max_length,omitempty"`
}

// IsZero reports whether no constraint is set
func (c Constraints) IsZero() bool {
	return c.Min == nil && c.Max == nil && len(c.Categories) == 0 && c.MaxLength == nil
}

// Validate checks structural validity of the feature definition: the data
// type must be known and the constraints must fit it.
func (f *Feature) Validate() error {
	if f.Name == "" {
		return goerr.New("feature name is required")
	}
	if !f.DataType.IsValid() {
		return goerr.New("unknown feature data type",
			goerr.V("name", f.Name),
			goerr.V("data_type", f.DataType))
	}
	if err := f.Constraints.ValidateFor(f.DataType); err != nil {
		return goerr.Wrap(err, "invalid constraints", goerr.V("name", f.Name))
	}
	if f.ImportanceScore != nil && (*f.ImportanceScore < 0 || *f.ImportanceScore > 1) {
		return goerr.New("importance score must be within [0, 1]",
			goerr.V("name", f.Name),
			goerr.V("importance_score", *f.ImportanceScore))
	}
	return nil
}

// ValidateFor checks that the constraints are structurally valid for the
// given data type
func (c Constraints) ValidateFor(dt types.DataType) error {
	switch dt {
	case types.DataTypeNumeric:
		if c.Min == nil || c.Max == nil {
			return goerr.New("numeric feature requires min and max constraints")
		}
		if *c.Min > *c.Max {
			return goerr.New("numeric constraint min must not exceed max",
				goerr.V("min", *c.Min),
				goerr.V("max", *c.Max))
		}
	case types.DataTypeCategorical:
		if len(c.Categories) == 0 {
			return goerr.New("categorical feature requires a non-empty categories list")
		}
	case types.DataTypeText:
		if c.MaxLength != nil && *c.MaxLength <= 0 {
			return goerr.New("text constraint max_length must be positive",
				goerr.V("max_length", *c.MaxLength))
		}
	case types.DataTypeBoolean, types.DataTypeDate:
		if !c.IsZero() {
			return goerr.New("constraints are not applicable to this data type",
				goerr.V("data_type", dt))
		}
	}
	return nil
}

// HasTag reports whether the feature carries the given tag
func (f *Feature) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
