package repository

import (
	"context"

	"kerneltest/internal/model"
)

// ResultRepository defines data access for test runs using SQL queries only.
// No business logic here, only persistence.
type ResultRepository interface {
	// Create inserts a run and its test cases atomically.
	// Returns the stored run (may include values set by the DB).
	Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error)

	// FindByID returns a run with its test cases.
	FindByID(ctx context.Context, id string) (*model.TestRun, error)

	// List returns a page of runs (without test cases) and the total matching rows.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.TestRun], error)
}

// PageQuery holds limit/offset pagination parameters and optional filters.
// Empty filters match everything; a nil Fedora matches every version.
type PageQuery struct {
	Limit   int
	Offset  int
	Fedora  *int
	Release string
	Kernel  string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
