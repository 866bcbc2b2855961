package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"coverage-planner-service/internal/api/dto"
	"coverage-planner-service/internal/domain"
	"coverage-planner-service/internal/ports"
	"coverage-planner-service/internal/solver"
)

type SolveHandler struct {
	Repo ports.InstanceRepository
	// Cache may be nil when no Redis address is configured.
	Cache    ports.ReportCache
	Defaults solver.Options
}

// Solve runs the exact search against the stored instance and returns
// the summary report. It coordinates repository access, the report
// cache, and the branch-and-bound solver.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SolveRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.TimeLimitMs < 0 || req.TimeLimitMs > 600_000 {
		writeError(w, r, http.StatusBadRequest, "time_limit_ms must be between 0 and 600000")
		return
	}
	if req.Workers < 0 || req.Workers > 32 {
		writeError(w, r, http.StatusBadRequest, "workers must be between 0 and 32")
		return
	}

	inst, err := h.Repo.LoadInstance(r.Context())
	if err != nil {
		log.Printf("solve: load instance failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.Budget != nil {
		inst, err = inst.WithBudget(*req.Budget)
		if errors.Is(err, domain.ErrInvalidInstance) {
			writeError(w, r, http.StatusBadRequest, "budget must be non-negative")
			return
		}
		if err != nil {
			log.Printf("solve: apply budget override failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	key := inst.Fingerprint()
	if h.Cache != nil {
		cached, ok, err := h.Cache.Get(r.Context(), key)
		if err != nil {
			// Cache trouble degrades to a fresh solve.
			log.Printf("solve: report cache get failed: %v", err)
		} else if ok {
			writeJSON(w, r, http.StatusOK, solveResponse(cached, true))
			return
		}
	}

	opts := h.Defaults
	if req.TimeLimitMs > 0 {
		opts.TimeLimit = time.Duration(req.TimeLimitMs) * time.Millisecond
	}
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}

	res, err := solver.Solve(r.Context(), inst, opts)
	if err != nil {
		log.Printf("solve failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	report := solver.BuildReport(inst, res)

	// Only certified optima are worth keeping; a time-limited incumbent
	// would pin a weaker answer for later requests.
	if h.Cache != nil && report.Optimal {
		if err := h.Cache.Put(r.Context(), key, report); err != nil {
			log.Printf("solve: report cache put failed: %v", err)
		}
	}

	writeJSON(w, r, http.StatusOK, solveResponse(report, false))
}

func solveResponse(report *solver.Report, cached bool) dto.SolveResponse {
	return dto.SolveResponse{
		BuiltSites:           report.BuiltSites,
		Objective:            report.Objective,
		TotalCost:            report.TotalCost,
		CoveragePct:          report.CoveragePct,
		BudgetConsumptionPct: report.BudgetConsumptionPct,
		Optimal:              report.Optimal,
		NodesExplored:        report.Nodes,
		Cached:               cached,
	}
}
