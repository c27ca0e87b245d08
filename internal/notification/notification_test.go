package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/congo-pay/payments-engine/internal/ledger"
	"github.com/congo-pay/payments-engine/internal/logging"
)

type recordingNotifier struct {
	sent []Message
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return r.err
}

func TestLockObserverFiresOnChargeback(t *testing.T) {
	rec := &recordingNotifier{}
	e := ledger.NewEngine(logging.Discard(), ledger.WithObserver(LockObserver(context.Background(), rec, logging.Discard())))

	_, err := e.Replay(context.Background(), ledger.SourceOf(
		ledger.Deposit(1, 1, ledger.MustAmount("100")),
		ledger.Deposit(1, 2, ledger.MustAmount("30")),
		ledger.Dispute(1, 2),
		ledger.Resolve(1, 2),
		ledger.Dispute(1, 1),
		ledger.Chargeback(1, 1),
		ledger.Chargeback(1, 2),
	))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(rec.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.sent))
	}
	msg := rec.sent[0]
	if msg.Kind != KindAccountLocked || msg.Client != 1 || msg.TxID != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "total 30.0000") {
		t.Fatalf("expected remaining total in body, got %q", msg.Body)
	}
}

func TestLockObserverSwallowsSendErrors(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingNotifier{err: errors.New("queue full")}
	observe := LockObserver(context.Background(), rec, logging.NewWithWriter("info", &buf))

	as := ledger.NewAccounts()
	as.Apply(ledger.Deposit(4, 1, ledger.MustAmount("1")))
	as.Apply(ledger.Dispute(4, 1))
	tx := ledger.Chargeback(4, 1)
	if err := as.Apply(tx); err != nil {
		t.Fatalf("chargeback: %v", err)
	}

	observe(tx, as[4])
	if len(rec.sent) != 1 {
		t.Fatalf("expected one send attempt, got %d", len(rec.sent))
	}
	if !strings.Contains(buf.String(), "queue full") {
		t.Fatalf("expected send failure to be logged, got %q", buf.String())
	}
}

func TestLoggerNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(logging.NewWithWriter("info", &buf))
	if err := n.Send(context.Background(), Message{Kind: KindAccountLocked, Client: 2, TxID: 9, Body: "locked"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, want := range []string{`"kind":"account_locked"`, `"client":2`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %s in %q", want, buf.String())
		}
	}

	var nilNotifier *LoggerNotifier
	if err := nilNotifier.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("nil notifier send: %v", err)
	}
}
