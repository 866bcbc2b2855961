package solver

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"coverage-planner-service/internal/domain"
)

// The cell tower scenario the service ships as seed data: 9 regions,
// 6 candidate sites, budget 20. All regions are coverable within
// budget, so the optimum is full coverage.
func towerInstance(t *testing.T) *domain.Instance {
	t.Helper()

	sites := []domain.Site{
		{ID: 0, Cost: 4.2, Covers: []int{0, 1, 5}},
		{ID: 1, Cost: 6.1, Covers: []int{0, 7, 8}},
		{ID: 2, Cost: 5.2, Covers: []int{2, 3, 4, 6}},
		{ID: 3, Cost: 5.5, Covers: []int{2, 5, 6}},
		{ID: 4, Cost: 4.8, Covers: []int{0, 2, 6, 7, 8}},
		{ID: 5, Cost: 9.2, Covers: []int{3, 4, 8}},
	}
	pops := []int64{523, 690, 420, 1010, 1200, 850, 400, 1008, 950}
	regions := make([]domain.Region, len(pops))
	for i, p := range pops {
		regions[i] = domain.Region{ID: i, Population: p}
	}

	inst, err := domain.NewInstance(sites, regions, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inst
}

// randomInstance builds a deterministic pseudo-random instance small
// enough for exhaustive cross-checking.
func randomInstance(t *testing.T, rng *rand.Rand, nSites, nRegions int) *domain.Instance {
	t.Helper()

	regions := make([]domain.Region, nRegions)
	for i := range regions {
		regions[i] = domain.Region{ID: i, Population: int64(rng.Intn(1000))}
	}

	sites := make([]domain.Site, nSites)
	for i := range sites {
		var covers []int
		for r := 0; r < nRegions; r++ {
			if rng.Intn(3) == 0 {
				covers = append(covers, r)
			}
		}
		sites[i] = domain.Site{
			ID:     i,
			Cost:   float64(rng.Intn(80)+1) / 10,
			Covers: covers,
		}
	}

	budget := float64(rng.Intn(200)+1) / 10
	inst, err := domain.NewInstance(sites, regions, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inst
}

// bruteForce enumerates every feasible subset and returns the best
// achievable covered population.
func bruteForce(inst *domain.Instance) int64 {
	n := inst.NumSites()
	var best int64
	for mask := 0; mask < 1<<n; mask++ {
		built := make([]bool, n)
		cost := 0.0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				built[i] = true
				cost += inst.SiteCost(i)
			}
		}
		if cost > inst.Budget()+costEps {
			continue
		}
		if pop := inst.CoveredPopulation(built); pop > best {
			best = pop
		}
	}
	return best
}

func solutionCost(inst *domain.Instance, built []bool) float64 {
	cost := 0.0
	for i, b := range built {
		if b {
			cost += inst.SiteCost(i)
		}
	}
	return cost
}

func TestSolveTowerScenario(t *testing.T) {
	inst := towerInstance(t)

	res, err := Solve(context.Background(), inst, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Optimal {
		t.Fatal("expected a certified optimal result")
	}
	// Sites {0,2,4} (cost 14.2) already cover all nine regions, so the
	// optimum is full coverage of the total population.
	if res.Solution.Objective != inst.TotalPopulation() {
		t.Fatalf("objective = %d, want full coverage %d", res.Solution.Objective, inst.TotalPopulation())
	}
	if res.Solution.Objective != 7051 {
		t.Fatalf("objective = %d, want 7051", res.Solution.Objective)
	}
	if res.Solution.TotalCost > inst.Budget()+costEps {
		t.Fatalf("total cost %v exceeds budget %v", res.Solution.TotalCost, inst.Budget())
	}
	if got := inst.CoveredPopulation(res.Solution.Built); got != res.Solution.Objective {
		t.Fatalf("recomputed coverage %d != reported objective %d", got, res.Solution.Objective)
	}
	if got := solutionCost(inst, res.Solution.Built); got != res.Solution.TotalCost {
		t.Fatalf("recomputed cost %v != reported cost %v", got, res.Solution.TotalCost)
	}
}

func TestSolveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 30; trial++ {
		inst := randomInstance(t, rng, 2+rng.Intn(9), 3+rng.Intn(10))

		res, err := Solve(context.Background(), inst, Options{})
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}

		if want := bruteForce(inst); res.Solution.Objective != want {
			t.Fatalf("trial %d: objective = %d, brute force = %d", trial, res.Solution.Objective, want)
		}
		if res.Solution.TotalCost > inst.Budget()+costEps {
			t.Fatalf("trial %d: cost %v exceeds budget %v", trial, res.Solution.TotalCost, inst.Budget())
		}
		if got := inst.CoveredPopulation(res.Solution.Built); got != res.Solution.Objective {
			t.Fatalf("trial %d: assignment covers %d, objective says %d", trial, got, res.Solution.Objective)
		}
	}
}

func TestSolveIdempotence(t *testing.T) {
	inst := towerInstance(t)

	first, err := Solve(context.Background(), inst, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Solve(context.Background(), inst, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Solution.Objective != second.Solution.Objective {
		t.Fatalf("objectives differ across runs: %d vs %d", first.Solution.Objective, second.Solution.Objective)
	}
	if first.Nodes != second.Nodes {
		t.Fatalf("node counts differ across runs: %d vs %d", first.Nodes, second.Nodes)
	}
}

func TestSolveParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	instances := []*domain.Instance{towerInstance(t)}
	for trial := 0; trial < 10; trial++ {
		instances = append(instances, randomInstance(t, rng, 4+rng.Intn(8), 3+rng.Intn(10)))
	}

	for i, inst := range instances {
		seq, err := Solve(context.Background(), inst, Options{})
		if err != nil {
			t.Fatalf("instance %d: unexpected error: %v", i, err)
		}
		par, err := Solve(context.Background(), inst, Options{Workers: 4})
		if err != nil {
			t.Fatalf("instance %d: unexpected error: %v", i, err)
		}

		if par.Solution.Objective != seq.Solution.Objective {
			t.Fatalf("instance %d: parallel objective %d != sequential %d", i, par.Solution.Objective, seq.Solution.Objective)
		}
		if !par.Optimal {
			t.Fatalf("instance %d: parallel result not flagged optimal", i)
		}
		if par.Solution.TotalCost > inst.Budget()+costEps {
			t.Fatalf("instance %d: parallel cost %v exceeds budget %v", i, par.Solution.TotalCost, inst.Budget())
		}
	}
}

func TestSolveTimeLimitReturnsIncumbent(t *testing.T) {
	// Force per-node stop checks so the expired deadline trips on the
	// very first node.
	oldMask := stopCheckMask
	stopCheckMask = 0
	defer func() { stopCheckMask = oldMask }()

	inst := towerInstance(t)

	res, err := Solve(context.Background(), inst, Options{TimeLimit: -time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Optimal {
		t.Fatal("expired time limit must not certify optimality")
	}
	if res.Solution.Objective < 0 {
		t.Fatalf("objective = %d, want >= 0", res.Solution.Objective)
	}
	if res.Solution.TotalCost > inst.Budget()+costEps {
		t.Fatalf("incumbent cost %v exceeds budget %v", res.Solution.TotalCost, inst.Budget())
	}
}

func TestSolveCancelledContext(t *testing.T) {
	oldMask := stopCheckMask
	stopCheckMask = 0
	defer func() { stopCheckMask = oldMask }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Solve(ctx, towerInstance(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Optimal {
		t.Fatal("cancelled context must not certify optimality")
	}
}

func TestSolveNoSiteFitsBudget(t *testing.T) {
	sites := []domain.Site{
		{ID: 0, Cost: 10, Covers: []int{0}},
		{ID: 1, Cost: 12, Covers: []int{1}},
	}
	regions := []domain.Region{
		{ID: 0, Population: 100},
		{ID: 1, Population: 200},
	}
	inst, err := domain.NewInstance(sites, regions, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := Solve(context.Background(), inst, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Solution.Objective != 0 {
		t.Fatalf("objective = %d, want 0", res.Solution.Objective)
	}
	if res.Solution.TotalCost != 0 {
		t.Fatalf("cost = %v, want 0", res.Solution.TotalCost)
	}
	for i, b := range res.Solution.Built {
		if b {
			t.Fatalf("site position %d built despite exceeding budget", i)
		}
	}
	if !res.Optimal {
		t.Fatal("trivial solution is still a certified optimum")
	}
}

func TestSolveEmptyInstance(t *testing.T) {
	inst, err := domain.NewInstance(nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := Solve(context.Background(), inst, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Solution.Objective != 0 || !res.Optimal {
		t.Fatalf("empty instance: objective = %d optimal = %v, want 0/true", res.Solution.Objective, res.Optimal)
	}
}

func TestSolveNilInstance(t *testing.T) {
	if _, err := Solve(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil instance")
	}
}
