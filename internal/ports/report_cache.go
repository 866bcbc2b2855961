package ports

import (
	"context"

	"coverage-planner-service/internal/solver"
)

// Port: a cache of solved reports keyed by instance fingerprint.
// Solves are deterministic, so a hit can be served without searching.
type ReportCache interface {
	// Look up a cached report. The second return is false on a miss.
	Get(ctx context.Context, key string) (*solver.Report, bool, error)
	// Store a report under the given key.
	Put(ctx context.Context, key string, report *solver.Report) error
}
