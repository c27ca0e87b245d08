// Package snapshot exports the final account table of a replay to external
// stores. Sinks are write-only: nothing here is read back into a later run.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/congo-pay/payments-engine/internal/report"
)

// Sink stores the account table produced by one replay.
type Sink interface {
	Save(ctx context.Context, runID uuid.UUID, rows []report.Row) error
}

// Multi fans a snapshot out to every sink and joins their errors.
type Multi []Sink

// Save writes rows to each sink, continuing past failures.
func (m Multi) Save(ctx context.Context, runID uuid.UUID, rows []report.Row) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, runID, rows); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
