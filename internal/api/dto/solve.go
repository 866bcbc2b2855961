package dto

type SolveRequest struct {
	Budget      *float64 `json:"budget"`
	TimeLimitMs int      `json:"time_limit_ms"`
	Workers     int      `json:"workers"`
}

type SolveResponse struct {
	BuiltSites           []int   `json:"built_sites"`
	Objective            int64   `json:"objective"`
	TotalCost            float64 `json:"total_cost"`
	CoveragePct          float64 `json:"coverage_pct"`
	BudgetConsumptionPct float64 `json:"budget_consumption_pct"`
	Optimal              bool    `json:"optimal"`
	NodesExplored        int64   `json:"nodes_explored"`
	Cached               bool    `json:"cached"`
}
