package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Reasons a transaction was not applied. Apply returns them so callers and
// tests can tell the outcomes apart; the replay engine drops them on purpose.
var (
	// ErrAccountLocked is returned for any record targeting an account frozen
	// by a previous chargeback.
	ErrAccountLocked = errors.New("account locked")

	// ErrMissingAmount occurs when a deposit or withdrawal carries no amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownTransaction indicates a dispute, resolve or chargeback that
	// references a transaction id with no recorded deposit for the client.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrAlreadyDisputed indicates a dispute on a deposit that is already held.
	ErrAlreadyDisputed = errors.New("transaction already disputed")

	// ErrNotDisputed indicates a resolve or chargeback on a deposit that is not held.
	ErrNotDisputed = errors.New("transaction not disputed")

	// ErrUnknownKind is returned for a Kind outside the five known values.
	ErrUnknownKind = errors.New("unknown transaction kind")
)

// Kind is the transaction type as it appears in the input stream.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind maps an input type name onto a Kind. Only the exact lowercase
// names are accepted.
func ParseKind(s string) (Kind, error) {
	if k := Kind(s); k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return true
	}
	return false
}

// ClientID identifies the owner of an account.
type ClientID uint16

// TxID identifies a transaction within the stream.
type TxID uint32

// Transaction is one decoded input record. Amount is only meaningful when
// HasAmount is true, which is the case for deposits and withdrawals.
type Transaction struct {
	Kind      Kind
	Client    ClientID
	ID        TxID
	Amount    decimal.Decimal
	HasAmount bool
}

// Deposit builds a deposit record.
func Deposit(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindDeposit, Client: client, ID: id, Amount: amount, HasAmount: true}
}

// Withdrawal builds a withdrawal record.
func Withdrawal(client ClientID, id TxID, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindWithdrawal, Client: client, ID: id, Amount: amount, HasAmount: true}
}

// Dispute builds a dispute record referencing an earlier deposit.
func Dispute(client ClientID, id TxID) Transaction {
	return Transaction{Kind: KindDispute, Client: client, ID: id}
}

// Resolve builds a resolve record referencing a disputed deposit.
func Resolve(client ClientID, id TxID) Transaction {
	return Transaction{Kind: KindResolve, Client: client, ID: id}
}

// Chargeback builds a chargeback record referencing a disputed deposit.
func Chargeback(client ClientID, id TxID) Transaction {
	return Transaction{Kind: KindChargeback, Client: client, ID: id}
}

// Source yields transactions in stream order. Next returns io.EOF once the
// stream is exhausted. Errors matching IsRecoverable are per-record decode
// failures; the engine reports them and keeps reading.
type Source interface {
	Next() (Transaction, error)
}

// Recoverable is implemented by source errors that concern a single record.
type Recoverable interface {
	Recoverable() bool
}

// IsRecoverable reports whether err describes a single bad record rather
// than a broken stream.
func IsRecoverable(err error) bool {
	var r Recoverable
	return errors.As(err, &r) && r.Recoverable()
}
