package domain

// Represents a feasible outcome of the search: per-site build decisions
// plus the objective (total covered population) and the money spent.
// Built is indexed by site position in the owning Instance (ascending
// id order). Invariant: TotalCost never exceeds the instance budget.
type Solution struct {
	Built     []bool
	Objective int64
	TotalCost float64
}

// BuiltSiteIDs returns the ids of the built sites in ascending order.
func (s *Solution) BuiltSiteIDs(in *Instance) []int {
	ids := make([]int, 0, len(s.Built))
	for i, b := range s.Built {
		if b {
			ids = append(ids, in.Site(i).ID)
		}
	}
	return ids
}

// CoveredPopulation recomputes the objective of an arbitrary assignment
// against the instance. The solver maintains this incrementally; this
// method exists for verification and reporting.
func (in *Instance) CoveredPopulation(built []bool) int64 {
	covered := make([]bool, len(in.regions))
	for i, b := range built {
		if !b {
			continue
		}
		for _, pos := range in.coverIndex[i] {
			covered[pos] = true
		}
	}

	var pop int64
	for i, c := range covered {
		if c {
			pop += in.regions[i].Population
		}
	}
	return pop
}
