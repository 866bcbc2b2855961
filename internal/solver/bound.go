package solver

import "sort"

// candidate is an undecided site with its marginal population gain
// relative to the regions already covered at the current node.
type candidate struct {
	idx      int
	marginal int64
}

// upperBound computes an admissible upper bound on the total covered
// population achievable from any completion of the sites at positions
// [next, n), given what is already covered and spent.
//
// It is the fractional knapsack relaxation: rank undecided sites by
// marginal population per unit cost (ties broken by lower position),
// take whole sites while the remaining budget lasts, then count a
// proportional fraction of the first site that no longer fits. Because
// a set of sites never covers more than the sum of their individual
// marginals, the relaxation never underestimates the best completion.
//
// Zero-cost sites are taken outright: they fit any remaining budget,
// including zero. With all costs positive and no budget left, the bound
// collapses to the population already covered.
func (e *engine) upperBound(next int, covered []uint64, pop int64, cost float64) float64 {
	bound := float64(pop)
	budgetLeft := e.budget - cost

	var cands []candidate
	for i := next; i < e.n; i++ {
		var marginal int64
		for _, pos := range e.inst.CoverIndex(i) {
			if covered[pos>>6]&(uint64(1)<<uint(pos&63)) == 0 {
				marginal += e.pops[pos]
			}
		}
		if marginal == 0 {
			continue
		}
		if e.costs[i] <= 0 {
			bound += float64(marginal)
			continue
		}
		cands = append(cands, candidate{idx: i, marginal: marginal})
	}

	if budgetLeft <= 0 || len(cands) == 0 {
		return bound
	}

	// Density order, costliest value-per-unit first. Cross-multiplied to
	// avoid dividing; costs here are strictly positive.
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		da := float64(a.marginal) * e.costs[b.idx]
		db := float64(b.marginal) * e.costs[a.idx]
		if da != db {
			return da > db
		}
		return a.idx < b.idx
	})

	for _, c := range cands {
		sc := e.costs[c.idx]
		if sc <= budgetLeft {
			budgetLeft -= sc
			bound += float64(c.marginal)
			continue
		}
		bound += float64(c.marginal) * budgetLeft / sc
		break
	}
	return bound
}
