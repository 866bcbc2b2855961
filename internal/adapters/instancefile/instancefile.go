// Package instancefile reads problem instances from a minimal
// line-oriented text encoding, one entity per line with comma-separated
// fields:
//
//	region,<id>,<population>
//	site,<id>,<cost>,<region-id>[;<region-id>...]
//	budget,<amount>
//
// Blank lines and lines starting with '#' are ignored. A site's third
// field may be empty for a site covering nothing. The budget line must
// appear exactly once. Validation beyond basic syntax happens in the
// domain constructor.
package instancefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"coverage-planner-service/internal/domain"
)

// Parse reads an instance from r.
func Parse(r io.Reader) (*domain.Instance, error) {
	var (
		sites     []domain.Site
		regions   []domain.Region
		budget    float64
		hasBudget bool
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		switch fields[0] {
		case "region":
			if len(fields) != 3 {
				return nil, fmt.Errorf("parse instance: line %d: region wants 2 fields, got %d", lineNo, len(fields)-1)
			}
			id, err := strconv.Atoi(strings.TrimSpace(fields[1]))
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: region id: %w", lineNo, err)
			}
			pop, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: region population: %w", lineNo, err)
			}
			regions = append(regions, domain.Region{ID: id, Population: pop})

		case "site":
			if len(fields) != 4 {
				return nil, fmt.Errorf("parse instance: line %d: site wants 3 fields, got %d", lineNo, len(fields)-1)
			}
			id, err := strconv.Atoi(strings.TrimSpace(fields[1]))
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: site id: %w", lineNo, err)
			}
			cost, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: site cost: %w", lineNo, err)
			}
			covers, err := parseCovers(strings.TrimSpace(fields[3]))
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: site coverage: %w", lineNo, err)
			}
			sites = append(sites, domain.Site{ID: id, Cost: cost, Covers: covers})

		case "budget":
			if len(fields) != 2 {
				return nil, fmt.Errorf("parse instance: line %d: budget wants 1 field, got %d", lineNo, len(fields)-1)
			}
			if hasBudget {
				return nil, fmt.Errorf("parse instance: line %d: duplicate budget line", lineNo)
			}
			b, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: budget: %w", lineNo, err)
			}
			budget = b
			hasBudget = true

		default:
			return nil, fmt.Errorf("parse instance: line %d: unknown record type %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse instance: read: %w", err)
	}
	if !hasBudget {
		return nil, fmt.Errorf("parse instance: missing budget line")
	}

	inst, err := domain.NewInstance(sites, regions, budget)
	if err != nil {
		return nil, fmt.Errorf("parse instance: %w", err)
	}
	return inst, nil
}

// Load reads an instance from a file on disk.
func Load(path string) (*domain.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load instance: open %q: %w", path, err)
	}
	defer f.Close()

	inst, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load instance: %q: %w", path, err)
	}
	return inst, nil
}

func parseCovers(field string) ([]int, error) {
	if field == "" {
		return nil, nil
	}

	parts := strings.Split(field, ";")
	covers := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region id %q: %w", p, err)
		}
		covers = append(covers, id)
	}
	return covers, nil
}
