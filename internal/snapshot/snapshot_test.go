package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/congo-pay/payments-engine/internal/report"
)

type fakeSink struct {
	calls int
	err   error
}

func (f *fakeSink) Save(_ context.Context, _ uuid.UUID, _ []report.Row) error {
	f.calls++
	return f.err
}

func TestMultiSavesToEverySink(t *testing.T) {
	boom := errors.New("boom")
	a, b, c := &fakeSink{}, &fakeSink{err: boom}, &fakeSink{}

	err := Multi{a, b, c}.Save(context.Background(), uuid.New(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	for i, s := range []*fakeSink{a, b, c} {
		if s.calls != 1 {
			t.Fatalf("sink %d: expected 1 call, got %d", i, s.calls)
		}
	}
}

func TestMultiEmpty(t *testing.T) {
	if err := Multi(nil).Save(context.Background(), uuid.New(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
}
