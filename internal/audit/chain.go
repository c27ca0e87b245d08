// Package audit keeps a hash chain over the transactions a replay applied.
// The chain carries no timestamps, so two replays of the same input end with
// the same digest.
package audit

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/congo-pay/payments-engine/internal/ledger"
)

// Genesis is the previous-hash value of the first entry.
var Genesis = strings.Repeat("0", 2*blake2b.Size256)

// Entry is one link of the chain.
type Entry struct {
	Seq          int
	PreviousHash string
	Payload      string
	Hash         string
}

// Chain folds applied transactions into a running BLAKE2b-256 digest.
type Chain struct {
	mu      sync.Mutex
	last    string
	seq     int
	entries []Entry
	keep    bool
}

// NewChain creates an empty chain. With keepEntries the individual links are
// retained for Entries/Verify; otherwise only the running digest is kept.
func NewChain(keepEntries bool) *Chain {
	return &Chain{last: Genesis, keep: keepEntries}
}

// Payload is the canonical text form of a transaction inside the chain.
func Payload(tx ledger.Transaction) string {
	amount := "-"
	if tx.HasAmount {
		amount = tx.Amount.String()
	}
	return fmt.Sprintf("%s|%d|%d|%s", tx.Kind, tx.Client, tx.ID, amount)
}

// Append links tx to the chain and returns the new entry.
func (c *Chain) Append(tx ledger.Transaction) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{Seq: c.seq + 1, PreviousHash: c.last, Payload: Payload(tx)}
	entry.Hash = hashEntry(entry.PreviousHash, entry.Seq, entry.Payload)

	c.last = entry.Hash
	c.seq = entry.Seq
	if c.keep {
		c.entries = append(c.entries, entry)
	}
	return entry
}

// Observe adapts the chain to a ledger.Observer.
func (c *Chain) Observe(tx ledger.Transaction, _ *ledger.Account) {
	c.Append(tx)
}

// Digest returns the hash of the last entry, or Genesis for an empty chain.
func (c *Chain) Digest() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Len returns the number of appended entries.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Entries returns a copy of the retained links.
func (c *Chain) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Verify checks that entries form an unbroken chain starting at Genesis.
func Verify(entries []Entry) bool {
	prev := Genesis
	for i, e := range entries {
		if e.Seq != i+1 || e.PreviousHash != prev {
			return false
		}
		if hashEntry(e.PreviousHash, e.Seq, e.Payload) != e.Hash {
			return false
		}
		prev = e.Hash
	}
	return true
}

func hashEntry(prev string, seq int, payload string) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s|%d|%s", prev, seq, payload)))
	return hex.EncodeToString(sum[:])
}
