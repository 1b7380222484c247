package repository

import "errors"

// Sentinel errors shared by every repository backend. Callers match these
// with errors.Is without knowing which backend produced them.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
