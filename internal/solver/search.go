// Package solver implements an exact branch-and-bound search for the
// budgeted maximum-coverage problem: choose a subset of sites whose
// total cost fits the budget, maximizing the population of covered
// regions. The search is deterministic (sites visited in ascending id
// order, build branch first) and prunes with an admissible fractional
// relaxation bound, so the returned solution is a certified optimum
// unless a time limit or context cancellation cuts it short.
package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"coverage-planner-service/internal/domain"

	"go.uber.org/atomic"
)

// Tolerances for float comparisons on costs and bounds. Populations are
// integral, so a bound strictly below best+1 cannot contain a better
// integer completion.
const (
	costEps  = 1e-9
	boundEps = 1e-6
)

// stopCheckMask controls how often the deadline and context are polled:
// once every mask+1 node visits. A var so tests can force per-node checks.
var stopCheckMask int64 = 1023

// Options tune a single solve call.
type Options struct {
	// TimeLimit bounds wall-clock search time; zero or negative means
	// no limit. On expiry the best incumbent found so far is returned,
	// flagged non-optimal.
	TimeLimit time.Duration
	// Workers > 1 enables the root-split parallel search.
	Workers int
}

// Result is the outcome of a solve: the best feasible solution found,
// whether it is a certified optimum, and how many nodes were explored.
type Result struct {
	Solution domain.Solution
	Optimal  bool
	Nodes    int64
}

// Solve runs the search to completion (or until the time limit / ctx
// expires) and returns the best solution found. The empty assignment is
// always feasible, so a Result is returned even for instances where no
// site fits the budget.
func Solve(ctx context.Context, inst *domain.Instance, opts Options) (*Result, error) {
	if inst == nil {
		return nil, errors.New("solve: instance must be non-nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Workers > 1 {
		return solveParallel(ctx, inst, opts)
	}

	e := newEngine(ctx, inst, opts.TimeLimit, atomic.NewInt64(0))
	e.dfs(0, make([]uint64, e.words), 0, 0)
	return e.result(), nil
}

// engine holds all per-worker search state. Covered-region sets are
// bitsets indexed by region position; site data is prefetched into flat
// slices to keep the hot loop free of interface calls.
type engine struct {
	inst   *domain.Instance
	n      int
	words  int
	budget float64
	costs  []float64
	pops   []int64

	ctx         context.Context
	deadline    time.Time
	useDeadline bool
	steps       int64
	stopped     bool

	// Best objective across all workers, advanced only by a strictly
	// greater compare-and-set. Workers tolerate stale reads: the worst
	// case is redundant exploration, never a wrong prune.
	shared *atomic.Int64

	built     []bool
	bestBuilt []bool
	bestPop   int64
	bestCost  float64
	nodes     int64
}

func newEngine(ctx context.Context, inst *domain.Instance, limit time.Duration, shared *atomic.Int64) *engine {
	n := inst.NumSites()
	e := &engine{
		inst:      inst,
		n:         n,
		words:     (inst.NumRegions() + 63) / 64,
		budget:    inst.Budget(),
		costs:     make([]float64, n),
		pops:      make([]int64, inst.NumRegions()),
		ctx:       ctx,
		shared:    shared,
		built:     make([]bool, n),
		bestBuilt: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		e.costs[i] = inst.SiteCost(i)
	}
	for i := 0; i < inst.NumRegions(); i++ {
		e.pops[i] = inst.RegionPopulation(i)
	}
	// A negative limit is already expired; the search then returns the
	// incumbent at the first stop check.
	if limit != 0 {
		e.deadline = time.Now().Add(limit)
		e.useDeadline = true
	}
	return e
}

// dfs explores the decision subtree rooted at site position next, with
// covered/pop/cost describing the decisions taken so far. The build
// branch is explored before the skip branch so strong incumbents appear
// early.
func (e *engine) dfs(next int, covered []uint64, pop int64, cost float64) {
	if e.checkStop() {
		return
	}
	e.nodes++

	if next == e.n {
		if pop > e.bestPop {
			e.bestPop = pop
			e.bestCost = cost
			copy(e.bestBuilt, e.built)
			e.advanceShared(pop)
		}
		return
	}

	if c := cost + e.costs[next]; c <= e.budget+costEps {
		childCovered, gain := e.withSite(covered, next)
		if e.admits(next+1, childCovered, pop+gain, c) {
			e.built[next] = true
			e.dfs(next+1, childCovered, pop+gain, c)
			e.built[next] = false
		}
	}

	if e.admits(next+1, covered, pop, cost) {
		e.dfs(next+1, covered, pop, cost)
	}
}

// admits reports whether the subtree at the given partial state can
// still beat the incumbent. The relaxation bound is an upper bound on
// any completion, so a subtree whose bound cannot reach best+1 holds no
// improving integral solution.
func (e *engine) admits(next int, covered []uint64, pop int64, cost float64) bool {
	best := e.shared.Load()
	if e.bestPop > best {
		best = e.bestPop
	}
	ub := e.upperBound(next, covered, pop, cost)
	return int64(math.Floor(ub+boundEps)) > best
}

// withSite returns a copy of covered with the site's regions added,
// along with the marginal population gained.
func (e *engine) withSite(covered []uint64, site int) ([]uint64, int64) {
	out := make([]uint64, e.words)
	copy(out, covered)

	var gain int64
	for _, pos := range e.inst.CoverIndex(site) {
		w, bit := pos>>6, uint64(1)<<uint(pos&63)
		if out[w]&bit == 0 {
			out[w] |= bit
			gain += e.pops[pos]
		}
	}
	return out, gain
}

func (e *engine) advanceShared(pop int64) {
	for {
		cur := e.shared.Load()
		if pop <= cur {
			return
		}
		if e.shared.CompareAndSwap(cur, pop) {
			return
		}
	}
}

// checkStop polls the deadline and context at a sparse node interval so
// the overhead stays negligible. Once tripped it stays tripped and the
// whole recursion unwinds, leaving the incumbent intact.
func (e *engine) checkStop() bool {
	if e.stopped {
		return true
	}
	e.steps++
	if e.steps&stopCheckMask != 0 {
		return false
	}
	if e.useDeadline && time.Now().After(e.deadline) {
		e.stopped = true
		return true
	}
	select {
	case <-e.ctx.Done():
		e.stopped = true
		return true
	default:
	}
	return false
}

func (e *engine) result() *Result {
	built := make([]bool, e.n)
	copy(built, e.bestBuilt)
	return &Result{
		Solution: domain.Solution{
			Built:     built,
			Objective: e.bestPop,
			TotalCost: e.bestCost,
		},
		Optimal: !e.stopped,
		Nodes:   e.nodes,
	}
}
