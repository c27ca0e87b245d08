package ledger

import (
	"io"

	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that sets the available balance of a client
// directly, bypassing the transaction log.
func SeedBalance(as Accounts, client ClientID, available string) {
	as.Get(client).Available = MustAmount(available)
}

// MustAmount parses a decimal literal and panics on failure. Intended for tests.
func MustAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type sliceSource struct {
	txs []Transaction
	pos int
}

// SourceOf returns a Source yielding txs in order.
func SourceOf(txs ...Transaction) Source {
	return &sliceSource{txs: txs}
}

func (s *sliceSource) Next() (Transaction, error) {
	if s.pos >= len(s.txs) {
		return Transaction{}, io.EOF
	}
	tx := s.txs[s.pos]
	s.pos++
	return tx, nil
}
