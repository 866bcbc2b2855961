package api

import (
	"net/http"

	"coverage-planner-service/internal/api/handlers"
	"coverage-planner-service/internal/ports"
	"coverage-planner-service/internal/solver"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// cache may be nil, in which case every solve runs fresh.
func NewRouter(repo ports.InstanceRepository, cache ports.ReportCache, defaults solver.Options) http.Handler {
	mux := http.NewServeMux()

	instHandler := &handlers.InstanceHandler{Repo: repo}
	solveHandler := &handlers.SolveHandler{
		Repo:     repo,
		Cache:    cache,
		Defaults: defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/instance", instHandler.Get)
	mux.HandleFunc("/solve", solveHandler.Solve)

	return loggingMiddleware(mux)
}
