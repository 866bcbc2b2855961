package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the instance database schema.
// Placeholders throughout this package use $N, which both the pgx and
// modernc sqlite drivers accept, so the same statements serve the local
// SQLite server path and the Postgres dbtool path.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRegionsQuery := `
	CREATE TABLE IF NOT EXISTS regions (
		region_id INTEGER PRIMARY KEY,
		population BIGINT NOT NULL
	);
	`

	createSitesQuery := `
	CREATE TABLE IF NOT EXISTS sites (
		site_id INTEGER PRIMARY KEY,
		cost DOUBLE PRECISION NOT NULL
	);
	`

	createCoverageQuery := `
	CREATE TABLE IF NOT EXISTS site_coverage (
		site_id INTEGER NOT NULL,
		region_id INTEGER NOT NULL,
		PRIMARY KEY (site_id, region_id)
	);
	`

	createMetaQuery := `
	CREATE TABLE IF NOT EXISTS instance_meta (
		meta_key TEXT PRIMARY KEY,
		meta_value DOUBLE PRECISION NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_site_coverage_region
	ON site_coverage(region_id);
	`

	statements := []string{
		createRegionsQuery,
		createSitesQuery,
		createCoverageQuery,
		createMetaQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type RegionSeed struct {
	RegionID   int   `json:"region_id"`
	Population int64 `json:"population"`
}

type SiteSeed struct {
	SiteID int     `json:"site_id"`
	Cost   float64 `json:"cost"`
	Covers []int   `json:"covers"`
}

type InstanceSeed struct {
	Budget  float64      `json:"budget"`
	Regions []RegionSeed `json:"regions"`
	Sites   []SiteSeed   `json:"sites"`
}

// Populate the database with instance data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed instance: read %q: %w", jsonPath, err)
	}

	var seed InstanceSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return fmt.Errorf("seed instance: parse json: %w", err)
	}

	if seed.Budget < 0 {
		return fmt.Errorf("seed instance: budget %v cannot be negative", seed.Budget)
	}
	for i, r := range seed.Regions {
		if r.Population < 0 {
			return fmt.Errorf("seed instance: region at index %d: population %d cannot be negative", i+1, r.Population)
		}
	}
	for i, s := range seed.Sites {
		if s.Cost < 0 {
			return fmt.Errorf("seed instance: site at index %d: cost %v cannot be negative", i+1, s.Cost)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed instance: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Replace the stored instance wholesale; partial merges of two
	// instances would not form a coherent problem.
	for _, table := range []string{"site_coverage", "sites", "regions", "instance_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table + ";"); err != nil {
			return fmt.Errorf("seed instance: clear %s: %w", table, err)
		}
	}

	regionStmt, err := tx.Prepare(`INSERT INTO regions (region_id, population) VALUES ($1, $2);`)
	if err != nil {
		return fmt.Errorf("seed instance: prepare region insert: %w", err)
	}
	defer regionStmt.Close()

	for _, r := range seed.Regions {
		if _, err := regionStmt.Exec(r.RegionID, r.Population); err != nil {
			return fmt.Errorf("seed instance: insert region_id=%d: %w", r.RegionID, err)
		}
	}

	siteStmt, err := tx.Prepare(`INSERT INTO sites (site_id, cost) VALUES ($1, $2);`)
	if err != nil {
		return fmt.Errorf("seed instance: prepare site insert: %w", err)
	}
	defer siteStmt.Close()

	coverStmt, err := tx.Prepare(`INSERT INTO site_coverage (site_id, region_id) VALUES ($1, $2);`)
	if err != nil {
		return fmt.Errorf("seed instance: prepare coverage insert: %w", err)
	}
	defer coverStmt.Close()

	for _, s := range seed.Sites {
		if _, err := siteStmt.Exec(s.SiteID, s.Cost); err != nil {
			return fmt.Errorf("seed instance: insert site_id=%d: %w", s.SiteID, err)
		}
		for _, rid := range s.Covers {
			if _, err := coverStmt.Exec(s.SiteID, rid); err != nil {
				return fmt.Errorf("seed instance: insert coverage site_id=%d region_id=%d: %w", s.SiteID, rid, err)
			}
		}
	}

	if _, err := tx.Exec(`INSERT INTO instance_meta (meta_key, meta_value) VALUES ('budget', $1);`, seed.Budget); err != nil {
		return fmt.Errorf("seed instance: insert budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed instance: commit tx: %w", err)
	}

	return nil
}
