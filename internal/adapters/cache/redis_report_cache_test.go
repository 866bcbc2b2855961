package cache

import (
	"context"
	"testing"
	"time"

	"coverage-planner-service/internal/solver"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) *RedisReportCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisReportCache(client, time.Hour)
}

func TestRedisReportCacheRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	report := &solver.Report{
		BuiltSites:           []int{0, 2, 4},
		Objective:            7051,
		TotalCost:            14.2,
		CoveragePct:          100,
		BudgetConsumptionPct: 71,
		Optimal:              true,
		Nodes:                42,
	}

	if err := c.Put(ctx, "abc123", report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := c.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}

	if got.Objective != report.Objective {
		t.Fatalf("objective = %d, want %d", got.Objective, report.Objective)
	}
	if got.TotalCost != report.TotalCost {
		t.Fatalf("total cost = %v, want %v", got.TotalCost, report.TotalCost)
	}
	if len(got.BuiltSites) != 3 || got.BuiltSites[0] != 0 || got.BuiltSites[1] != 2 || got.BuiltSites[2] != 4 {
		t.Fatalf("built sites = %v, want [0 2 4]", got.BuiltSites)
	}
	if !got.Optimal {
		t.Fatal("optimal flag lost in round trip")
	}
}

func TestRedisReportCacheMiss(t *testing.T) {
	c := testCache(t)

	got, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}
}

func TestRedisReportCacheRejectsBadInput(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	if _, _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := c.Put(ctx, "", &solver.Report{}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := c.Put(ctx, "k", nil); err == nil {
		t.Fatal("expected error for nil report")
	}
}
