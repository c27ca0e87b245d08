package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/congo-pay/payments-engine/internal/ledger"
)

const (
	// KindAccountLocked indicates a chargeback froze a client account.
	KindAccountLocked = "account_locked"
)

// Message describes a notification payload.
type Message struct {
	Kind   string
	Client ledger.ClientID
	TxID   ledger.TxID
	Body   string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "client", message.Client, "tx", message.TxID, "body", message.Body)
	return nil
}

// LockObserver returns a ledger observer that notifies once per chargeback
// that locks an account. Delivery failures are logged and never affect the
// replay.
func LockObserver(ctx context.Context, n Notifier, logger *slog.Logger) ledger.Observer {
	return func(tx ledger.Transaction, acc *ledger.Account) {
		if tx.Kind != ledger.KindChargeback || !acc.Locked {
			return
		}
		msg := Message{
			Kind:   KindAccountLocked,
			Client: acc.Client,
			TxID:   tx.ID,
			Body:   fmt.Sprintf("client %d locked after chargeback of tx %d; total %s", acc.Client, tx.ID, acc.Total().StringFixed(4)),
		}
		if err := n.Send(ctx, msg); err != nil {
			logger.Warn("send lock notification", "client", acc.Client, "error", err)
		}
	}
}
