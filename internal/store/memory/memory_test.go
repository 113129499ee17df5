// internal/store/memory/memory_test.go
package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tamzrod/probe-harvester/internal/store"
)

func TestStore_InsertAndCopyOut(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.InsertReading(ctx, store.Reading{Sensor1: store.Float(21.5)}); err != nil {
		t.Fatalf("InsertReading: %v", err)
	}
	if err := s.InsertConnectionStatus(ctx, store.ConnectionStatus{IsConnect: true}); err != nil {
		t.Fatalf("InsertConnectionStatus: %v", err)
	}

	rs := s.Readings()
	if len(rs) != 1 || *rs[0].Sensor1 != 21.5 || rs[0].Sensor2 != nil {
		t.Fatalf("readings: %+v", rs)
	}
	if rs[0].Timestamp.IsZero() {
		t.Fatalf("timestamp not defaulted")
	}

	// mutating the copy must not leak back
	rs[0].Sensor2 = store.Float(1)
	if s.Readings()[0].Sensor2 != nil {
		t.Fatalf("Readings returned internal slice")
	}

	st := s.Statuses()
	if len(st) != 1 || !st[0].IsConnect || st[0].CreatedAt.IsZero() {
		t.Fatalf("statuses: %+v", st)
	}
}

func TestStore_InjectedFailure(t *testing.T) {
	s := New()
	boom := errors.New("disk full")
	s.SetFail(boom)

	if err := s.InsertReading(context.Background(), store.Reading{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(s.Readings()) != 0 {
		t.Fatalf("failed insert was stored")
	}

	s.SetFail(nil)
	if err := s.InsertReading(context.Background(), store.Reading{}); err != nil {
		t.Fatalf("unexpected error after clearing failure: %v", err)
	}
}
