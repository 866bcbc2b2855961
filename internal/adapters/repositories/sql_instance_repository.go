package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coverage-planner-service/internal/domain"
)

// SQL-backed implementation of the InstanceRepository port.
type SQLInstanceRepository struct{ DB *sql.DB }

func NewSQLInstanceRepository(db *sql.DB) *SQLInstanceRepository {
	return &SQLInstanceRepository{DB: db}
}

// Load the stored instance and validate it through the domain
// constructor. A database with no budget row is treated as malformed.
func (s *SQLInstanceRepository) LoadInstance(ctx context.Context) (*domain.Instance, error) {
	if s.DB == nil {
		return nil, errors.New("sql instance repository: DB is nil")
	}

	regions, err := s.loadRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instance: %w", err)
	}

	sites, err := s.loadSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instance: %w", err)
	}

	var budget float64
	err = s.DB.QueryRowContext(ctx, `SELECT meta_value FROM instance_meta WHERE meta_key = 'budget';`).Scan(&budget)
	if err != nil {
		return nil, fmt.Errorf("load instance: read budget: %w", err)
	}

	inst, err := domain.NewInstance(sites, regions, budget)
	if err != nil {
		return nil, fmt.Errorf("load instance: %w", err)
	}
	return inst, nil
}

func (s *SQLInstanceRepository) loadRegions(ctx context.Context) ([]domain.Region, error) {
	query := `
	SELECT
		region_id,
		population
	FROM regions
	ORDER BY region_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query regions table: %w", err)
	}
	defer rows.Close()

	regions := make([]domain.Region, 0, 64)
	for rows.Next() {
		var r domain.Region
		if err := rows.Scan(&r.ID, &r.Population); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		regions = append(regions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("region row iteration: %w", err)
	}

	return regions, nil
}

func (s *SQLInstanceRepository) loadSites(ctx context.Context) ([]domain.Site, error) {
	query := `
	SELECT
		site_id,
		cost
	FROM sites
	ORDER BY site_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sites table: %w", err)
	}
	defer rows.Close()

	sites := make([]domain.Site, 0, 64)
	index := make(map[int]int)
	for rows.Next() {
		var site domain.Site
		if err := rows.Scan(&site.ID, &site.Cost); err != nil {
			return nil, fmt.Errorf("scan site row: %w", err)
		}
		index[site.ID] = len(sites)
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("site row iteration: %w", err)
	}

	coverQuery := `
	SELECT
		site_id,
		region_id
	FROM site_coverage
	ORDER BY site_id, region_id;
	`
	coverRows, err := s.DB.QueryContext(ctx, coverQuery)
	if err != nil {
		return nil, fmt.Errorf("query site_coverage table: %w", err)
	}
	defer coverRows.Close()

	for coverRows.Next() {
		var siteID, regionID int
		if err := coverRows.Scan(&siteID, &regionID); err != nil {
			return nil, fmt.Errorf("scan coverage row: %w", err)
		}
		i, ok := index[siteID]
		if !ok {
			return nil, fmt.Errorf("coverage references unknown site_id=%d", siteID)
		}
		sites[i].Covers = append(sites[i].Covers, regionID)
	}
	if err := coverRows.Err(); err != nil {
		return nil, fmt.Errorf("coverage row iteration: %w", err)
	}

	return sites, nil
}
