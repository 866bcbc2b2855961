package solver

import (
	"math"

	"coverage-planner-service/internal/domain"
)

// Report is the presentation-ready summary of a solve: which sites to
// build, how much population that covers, and how the percentages work
// out against the instance totals.
type Report struct {
	BuiltSites           []int   `json:"built_sites"`
	Objective            int64   `json:"objective"`
	TotalCost            float64 `json:"total_cost"`
	CoveragePct          float64 `json:"coverage_pct"`
	BudgetConsumptionPct float64 `json:"budget_consumption_pct"`
	Optimal              bool    `json:"optimal"`
	Nodes                int64   `json:"nodes_explored"`
}

// BuildReport derives the summary statistics from a solve result.
//
// Percentages are rounded to two decimals. A zero total population
// yields 0.0 coverage by convention, and a zero budget yields 0.0
// consumption (with a zero budget nothing costly can be built, so the
// ratio is only ever 0/0).
func BuildReport(inst *domain.Instance, res *Result) *Report {
	coverage := 0.0
	if inst.TotalPopulation() > 0 {
		coverage = round2(100 * float64(res.Solution.Objective) / float64(inst.TotalPopulation()))
	}

	consumption := 0.0
	if inst.Budget() > 0 {
		consumption = round2(100 * res.Solution.TotalCost / inst.Budget())
	}

	return &Report{
		BuiltSites:           res.Solution.BuiltSiteIDs(inst),
		Objective:            res.Solution.Objective,
		TotalCost:            res.Solution.TotalCost,
		CoveragePct:          coverage,
		BudgetConsumptionPct: consumption,
		Optimal:              res.Optimal,
		Nodes:                res.Nodes,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
