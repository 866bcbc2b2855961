package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidInstance marks construction failures: negative costs,
// populations or budget, duplicate ids, or a coverage set referencing an
// unknown region. Callers check it with errors.Is.
var ErrInvalidInstance = errors.New("invalid instance")

// Immutable problem instance for the budgeted coverage planner.
//
// An Instance is validated once on construction and never mutated
// afterwards; the solver holds it read-only for the whole search.
// Sites and regions are kept sorted by ascending id so that search
// order and tie-breaking are deterministic.
type Instance struct {
	sites   []Site
	regions []Region
	budget  float64

	regionIndex map[int]int // region id -> position in regions
	coverIndex  [][]int     // per site: covered region positions, ascending
	totalPop    int64
}

// NewInstance validates the raw tables and builds an Instance.
// The input slices are copied; callers may reuse them afterwards.
func NewInstance(sites []Site, regions []Region, budget float64) (*Instance, error) {
	if budget < 0 {
		return nil, fmt.Errorf("new instance: budget %v is negative: %w", budget, ErrInvalidInstance)
	}

	rs := make([]Region, len(regions))
	copy(rs, regions)
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })

	regionIndex := make(map[int]int, len(rs))
	var totalPop int64
	for i, r := range rs {
		if r.Population < 0 {
			return nil, fmt.Errorf("new instance: region %d population %d is negative: %w", r.ID, r.Population, ErrInvalidInstance)
		}
		if _, ok := regionIndex[r.ID]; ok {
			return nil, fmt.Errorf("new instance: duplicate region id %d: %w", r.ID, ErrInvalidInstance)
		}
		regionIndex[r.ID] = i
		totalPop += r.Population
	}

	ss := make([]Site, len(sites))
	copy(ss, sites)
	sort.Slice(ss, func(i, j int) bool { return ss[i].ID < ss[j].ID })

	seenSites := make(map[int]struct{}, len(ss))
	coverIndex := make([][]int, len(ss))
	for i, s := range ss {
		if s.Cost < 0 {
			return nil, fmt.Errorf("new instance: site %d cost %v is negative: %w", s.ID, s.Cost, ErrInvalidInstance)
		}
		if _, ok := seenSites[s.ID]; ok {
			return nil, fmt.Errorf("new instance: duplicate site id %d: %w", s.ID, ErrInvalidInstance)
		}
		seenSites[s.ID] = struct{}{}

		idx := make([]int, 0, len(s.Covers))
		seenRegions := make(map[int]struct{}, len(s.Covers))
		for _, rid := range s.Covers {
			pos, ok := regionIndex[rid]
			if !ok {
				return nil, fmt.Errorf("new instance: site %d covers unknown region %d: %w", s.ID, rid, ErrInvalidInstance)
			}
			// Duplicate region ids within one coverage set are harmless; collapse them.
			if _, dup := seenRegions[rid]; dup {
				continue
			}
			seenRegions[rid] = struct{}{}
			idx = append(idx, pos)
		}
		sort.Ints(idx)
		coverIndex[i] = idx
	}

	return &Instance{
		sites:       ss,
		regions:     rs,
		budget:      budget,
		regionIndex: regionIndex,
		coverIndex:  coverIndex,
		totalPop:    totalPop,
	}, nil
}

// WithBudget returns a copy of the instance with a different budget.
// Used when a solve request overrides the stored budget.
func (in *Instance) WithBudget(budget float64) (*Instance, error) {
	return NewInstance(in.sites, in.regions, budget)
}

// NumSites returns the number of candidate sites.
func (in *Instance) NumSites() int { return len(in.sites) }

// NumRegions returns the number of regions.
func (in *Instance) NumRegions() int { return len(in.regions) }

// Site returns the site at position i (ascending id order).
func (in *Instance) Site(i int) Site { return in.sites[i] }

// Region returns the region at position i (ascending id order).
func (in *Instance) Region(i int) Region { return in.regions[i] }

// SiteCost returns the build cost of the site at position i.
func (in *Instance) SiteCost(i int) float64 { return in.sites[i].Cost }

// CoverIndex returns the region positions covered by the site at
// position i, sorted ascending. Callers must not modify the slice.
func (in *Instance) CoverIndex(i int) []int { return in.coverIndex[i] }

// RegionPopulation returns the population of the region at position i.
func (in *Instance) RegionPopulation(i int) int64 { return in.regions[i].Population }

// TotalPopulation returns the sum of all region populations.
func (in *Instance) TotalPopulation() int64 { return in.totalPop }

// Budget returns the spending limit for built sites.
func (in *Instance) Budget() float64 { return in.budget }

// Fingerprint returns a stable hash of the instance contents, used as
// a cache key for solved reports. Two instances with the same sites,
// regions and budget produce the same fingerprint.
func (in *Instance) Fingerprint() string {
	var b strings.Builder
	for _, r := range in.regions {
		b.WriteString("r,")
		b.WriteString(strconv.Itoa(r.ID))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(r.Population, 10))
		b.WriteByte('\n')
	}
	for i, s := range in.sites {
		b.WriteString("s,")
		b.WriteString(strconv.Itoa(s.ID))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(s.Cost, 'g', -1, 64))
		for _, pos := range in.coverIndex[i] {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(in.regions[pos].ID))
		}
		b.WriteByte('\n')
	}
	b.WriteString("b,")
	b.WriteString(strconv.FormatFloat(in.budget, 'g', -1, 64))

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
