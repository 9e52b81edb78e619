// Package repository contains data access abstractions for the activity journal.
// Implementations live in subpackages (postgres).
package repository

import (
	"context"
	"errors"

	"studymate/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a page of items plus the total number of matching rows.
type PageResult[T any] struct {
	Items []T
	Total int
}

// ActivityFilter narrows an activity listing. Empty fields match everything.
type ActivityFilter struct {
	PrincipalUID string
	Operation    string
	Page         PageQuery
}

// ActivityRepository persists finished client calls. SQL only, no business rules.
type ActivityRepository interface {
	Record(ctx context.Context, a *model.Activity) error
	FindByID(ctx context.Context, id string) (*model.Activity, error)
	// List returns the newest activities first.
	List(ctx context.Context, f ActivityFilter) (*PageResult[model.Activity], error)
}
