package solver

import (
	"context"

	"coverage-planner-service/internal/domain"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// prefix is a fully decided assignment of the first sites, handed to a
// worker as the root of a disjoint subtree.
type prefix struct {
	decisions []bool
	covered   []uint64
	pop       int64
	cost      float64
}

// solveParallel splits the decision tree at a shallow depth into
// disjoint subtrees and explores them on opts.Workers goroutines. The
// workers share only the incumbent objective value, a monotonically
// increasing lower bound advanced by compare-and-set; each keeps its
// own best assignment, and the winners are merged at the end. The
// merged objective always equals the sequential one, though ties may
// settle on a different equal-valued assignment.
func solveParallel(ctx context.Context, inst *domain.Instance, opts Options) (*Result, error) {
	workers := opts.Workers
	depth := splitDepth(workers, inst.NumSites())

	shared := atomic.NewInt64(0)
	engines := make([]*engine, workers)
	tasks := make(chan prefix)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		e := newEngine(gctx, inst, opts.TimeLimit, shared)
		engines[w] = e
		g.Go(func() error {
			for p := range tasks {
				e.runPrefix(p)
			}
			return nil
		})
	}

	root := newEngine(gctx, inst, opts.TimeLimit, shared)
	enumeratePrefixes(root, depth, tasks)
	close(tasks)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := engines[0].result()
	optimal := best.Optimal
	nodes := best.Nodes
	for _, e := range engines[1:] {
		r := e.result()
		nodes += r.Nodes
		optimal = optimal && r.Optimal
		if r.Solution.Objective > best.Solution.Objective {
			best = r
		}
	}
	best.Nodes = nodes
	best.Optimal = optimal
	return best, nil
}

// splitDepth picks how many leading sites to decide up front: enough
// prefixes to keep the workers busy, capped to keep the task list tiny.
func splitDepth(workers, n int) int {
	d := 0
	for (1<<d) < 2*workers && d < n && d < 8 {
		d++
	}
	return d
}

// enumeratePrefixes walks all feasible decision vectors for the first
// depth sites and emits one task per vector. Infeasible build branches
// (cost over budget) are dropped here, exactly as the search would.
func enumeratePrefixes(e *engine, depth int, out chan<- prefix) {
	decisions := make([]bool, depth)

	var walk func(next int, covered []uint64, pop int64, cost float64)
	walk = func(next int, covered []uint64, pop int64, cost float64) {
		if next == depth {
			d := make([]bool, depth)
			copy(d, decisions)
			c := make([]uint64, len(covered))
			copy(c, covered)
			out <- prefix{decisions: d, covered: c, pop: pop, cost: cost}
			return
		}
		if c := cost + e.costs[next]; c <= e.budget+costEps {
			childCovered, gain := e.withSite(covered, next)
			decisions[next] = true
			walk(next+1, childCovered, pop+gain, c)
		}
		decisions[next] = false
		walk(next+1, covered, pop, cost)
	}

	walk(0, make([]uint64, e.words), 0, 0)
}

// runPrefix continues the depth-first search below a decided prefix.
func (e *engine) runPrefix(p prefix) {
	copy(e.built, p.decisions)
	e.dfs(len(p.decisions), p.covered, p.pop, p.cost)
	for i := range p.decisions {
		e.built[i] = false
	}
}
