package ports

import (
	"context"

	"coverage-planner-service/internal/domain"
)

// Port: a boundary for loading the planning instance from a data source.
type InstanceRepository interface {
	// Load the full problem instance (sites, regions, budget).
	LoadInstance(ctx context.Context) (*domain.Instance, error)
}
