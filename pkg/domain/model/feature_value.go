package model

import "time"

// FeatureValue associates one feature with one entity and a single typed
// value. There is at most one current value per (FeatureID, EntityID) pair;
// setting a value again replaces the previous one.
type FeatureValue struct {
	FeatureID int64     `json:"feature_id"`
	EntityID  string    `json:"entity_id"`
	Value     Value     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
