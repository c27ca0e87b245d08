package snapshot

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/congo-pay/payments-engine/internal/infra"
)

func TestPostgresSinkSave(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, url, "payments-engine-test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	runID := uuid.New()
	if err := NewPostgresSink(pool).Save(ctx, runID, sampleRows()); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM account_snapshots WHERE run_id = $1`, runID)
	})

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM account_snapshots WHERE run_id = $1`, runID).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var total string
	var locked bool
	if err := pool.QueryRow(ctx,
		`SELECT total::text, locked FROM account_snapshots WHERE run_id = $1 AND client = 2`, runID).Scan(&total, &locked); err != nil {
		t.Fatalf("read client 2: %v", err)
	}
	if total != "2.5" || locked {
		t.Fatalf("expected total 2.5 unlocked, got %s locked=%v", total, locked)
	}
}
