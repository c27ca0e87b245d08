package snapshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/congo-pay/payments-engine/internal/report"
)

const createSnapshotsTable = `
        CREATE TABLE IF NOT EXISTS account_snapshots (
            run_id     UUID        NOT NULL,
            client     INTEGER     NOT NULL,
            available  NUMERIC     NOT NULL,
            held       NUMERIC     NOT NULL,
            total      NUMERIC     NOT NULL,
            locked     BOOLEAN     NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (run_id, client)
        )`

const insertSnapshot = `INSERT INTO account_snapshots (run_id, client, available, held, total, locked)
        VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6)`

// TxStarter is satisfied by *pgxpool.Pool and pgx.Conn.
type TxStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PostgresSink persists account tables in PostgreSQL, one row per client.
type PostgresSink struct {
	db TxStarter
}

// NewPostgresSink constructs a Postgres-backed snapshot sink.
func NewPostgresSink(db TxStarter) *PostgresSink {
	return &PostgresSink{db: db}
}

// Save writes every row of the run inside a single transaction.
func (s *PostgresSink) Save(ctx context.Context, runID uuid.UUID, rows []report.Row) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("ensure snapshot table: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertSnapshot, runID, int32(row.Client),
			row.Available.String(), row.Held.String(), row.Total.String(), row.Locked)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert snapshot rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
