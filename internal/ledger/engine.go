package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Observer is invoked after every applied transaction with the updated account.
type Observer func(tx Transaction, acc *Account)

// Stats summarises a replay.
type Stats struct {
	Decoded   int
	Applied   int
	Malformed int
	// Rejected counts decoded records that did not apply, keyed by reason.
	Rejected map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called after each applied transaction.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// Engine replays a transaction stream against the account table it owns.
type Engine struct {
	accounts  Accounts
	logger    *slog.Logger
	observers []Observer
}

// NewEngine builds an engine with an empty account table.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{accounts: NewAccounts(), logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Accounts returns the table the engine mutates.
func (e *Engine) Accounts() Accounts {
	return e.accounts
}

// Snapshot returns the current accounts ordered by client id.
func (e *Engine) Snapshot() []*Account {
	return e.accounts.Sorted()
}

// Apply runs a single transaction and notifies observers when it applied.
func (e *Engine) Apply(tx Transaction) error {
	if err := e.accounts.Apply(tx); err != nil {
		return err
	}
	acc := e.accounts[tx.Client]
	for _, fn := range e.observers {
		fn(tx, acc)
	}
	return nil
}

// Replay drains src in order. Records that cannot apply are counted and
// otherwise ignored; undecodable records are logged and skipped. Only a
// stream failure or a cancelled ctx stops the replay early.
func (e *Engine) Replay(ctx context.Context, src Source) (Stats, error) {
	stats := Stats{Rejected: make(map[string]int)}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			if IsRecoverable(err) {
				stats.Malformed++
				e.logger.Warn("skipping invalid row", "error", err)
				continue
			}
			return stats, fmt.Errorf("read transactions: %w", err)
		}

		stats.Decoded++
		if err := e.Apply(tx); err != nil {
			stats.Rejected[err.Error()]++
			continue
		}
		stats.Applied++
	}
}
