package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/payments-engine/internal/report"
)

// RedisSink publishes account tables as Redis hashes so other tools can look
// up a client's closing balance for a run.
//
// Layout per run:
//
//	<prefix>:<run_id>:clients   set of client ids
//	<prefix>:<run_id>:<client>  hash of available, held, total, locked
type RedisSink struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSink builds a sink writing under prefix. Keys expire after ttl; a
// non-positive ttl keeps them forever.
func NewRedisSink(client *redis.Client, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

// IndexKey is the set holding the client ids of a run.
func (s *RedisSink) IndexKey(runID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:clients", s.prefix, runID)
}

// AccountKey is the hash holding one client's balances for a run.
func (s *RedisSink) AccountKey(runID uuid.UUID, client uint16) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, runID, client)
}

// Save writes all rows in one MULTI/EXEC pipeline.
func (s *RedisSink) Save(ctx context.Context, runID uuid.UUID, rows []report.Row) error {
	index := s.IndexKey(runID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, row := range rows {
			key := s.AccountKey(runID, uint16(row.Client))
			pipe.HSet(ctx, key,
				"available", row.Available.StringFixed(report.Places),
				"held", row.Held.StringFixed(report.Places),
				"total", row.Total.StringFixed(report.Places),
				"locked", strconv.FormatBool(row.Locked),
			)
			pipe.SAdd(ctx, index, uint64(row.Client))
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		if s.ttl > 0 && len(rows) > 0 {
			pipe.Expire(ctx, index, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write redis snapshot: %w", err)
	}
	return nil
}
