package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

type logEntry struct {
	amount   decimal.Decimal
	disputed bool
}

// Account is the ledger state of a single client.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool

	deposits map[TxID]*logEntry
}

func newAccount(client ClientID) *Account {
	return &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		deposits:  make(map[TxID]*logEntry),
	}
}

// Total is the full balance of the account, held funds included.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Disputed reports whether the deposit id is currently held by a dispute.
func (a *Account) Disputed(id TxID) bool {
	e, ok := a.deposits[id]
	return ok && e.disputed
}

func (a *Account) deposit(tx Transaction) error {
	if !tx.HasAmount {
		return ErrMissingAmount
	}
	a.Available = a.Available.Add(tx.Amount)
	a.deposits[tx.ID] = &logEntry{amount: tx.Amount}
	return nil
}

func (a *Account) withdraw(tx Transaction) error {
	if !tx.HasAmount {
		return ErrMissingAmount
	}
	if a.Available.LessThan(tx.Amount) {
		return ErrInsufficientFunds
	}
	a.Available = a.Available.Sub(tx.Amount)
	return nil
}

func (a *Account) dispute(tx Transaction) error {
	e, ok := a.deposits[tx.ID]
	if !ok {
		return ErrUnknownTransaction
	}
	if e.disputed {
		return ErrAlreadyDisputed
	}
	// Available may go negative when the deposit was already spent.
	a.Available = a.Available.Sub(e.amount)
	a.Held = a.Held.Add(e.amount)
	e.disputed = true
	return nil
}

func (a *Account) resolve(tx Transaction) error {
	e, ok := a.deposits[tx.ID]
	if !ok {
		return ErrUnknownTransaction
	}
	if !e.disputed {
		return ErrNotDisputed
	}
	a.Available = a.Available.Add(e.amount)
	a.Held = a.Held.Sub(e.amount)
	e.disputed = false
	return nil
}

func (a *Account) chargeback(tx Transaction) error {
	e, ok := a.deposits[tx.ID]
	if !ok {
		return ErrUnknownTransaction
	}
	if !e.disputed {
		return ErrNotDisputed
	}
	a.Held = a.Held.Sub(e.amount)
	a.Locked = true
	e.disputed = false
	return nil
}

// Accounts maps client ids to their account state. The zero value is not
// usable; create one with NewAccounts.
type Accounts map[ClientID]*Account

// NewAccounts returns an empty account table.
func NewAccounts() Accounts {
	return make(Accounts)
}

// Get returns the account for client, creating a zeroed unlocked one on
// first reference.
func (as Accounts) Get(client ClientID) *Account {
	acc, ok := as[client]
	if !ok {
		acc = newAccount(client)
		as[client] = acc
	}
	return acc
}

// Apply runs one transaction against the table. It returns nil when the
// transaction changed the account and the reason otherwise; a rejected
// transaction leaves every account as it was.
func (as Accounts) Apply(tx Transaction) error {
	if !tx.Kind.Valid() {
		return ErrUnknownKind
	}
	acc := as.Get(tx.Client)
	if acc.Locked {
		return ErrAccountLocked
	}

	switch tx.Kind {
	case KindDeposit:
		return acc.deposit(tx)
	case KindWithdrawal:
		return acc.withdraw(tx)
	case KindDispute:
		return acc.dispute(tx)
	case KindResolve:
		return acc.resolve(tx)
	case KindChargeback:
		return acc.chargeback(tx)
	default:
		return ErrUnknownKind
	}
}

// Sorted returns the accounts ordered by client id.
func (as Accounts) Sorted() []*Account {
	out := make([]*Account, 0, len(as))
	for _, acc := range as {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}
