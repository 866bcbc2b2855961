package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"coverage-planner-service/internal/adapters/cache"
	"coverage-planner-service/internal/adapters/repositories"
	"coverage-planner-service/internal/api"
	"coverage-planner-service/internal/config"
	"coverage-planner-service/internal/ports"
	"coverage-planner-service/internal/solver"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/instance.json")
	port := config.Get("PORT", "8080")
	redisAddr := config.Get("REDIS_ADDR", "")

	defaults := solver.Options{
		TimeLimit: time.Duration(config.GetInt("SOLVE_TIME_LIMIT_MS", 0)) * time.Millisecond,
		Workers:   config.GetInt("SOLVE_WORKERS", 1),
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed the demo instance on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	// The report cache is optional: without Redis every solve runs fresh,
	// which is fine for the instance sizes this service targets.
	var reportCache ports.ReportCache
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()
		reportCache = cache.NewRedisReportCache(client, 24*time.Hour)
		log.Printf("Report cache enabled addr=%s", redisAddr)
	}

	repo := repositories.NewSQLInstanceRepository(db)
	router := api.NewRouter(repo, reportCache, defaults)

	// Write timeout leaves room for time-limited solves on larger instances.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
