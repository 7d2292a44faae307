package statusstore

import (
	"testing"
	"time"

	"github.com/kilianp07/pvcharge/core/control"
	"github.com/kilianp07/pvcharge/core/model"
)

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Latest(); ok {
		t.Fatalf("expected empty store")
	}

	res := control.CycleResult{
		Time:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Decision: model.Decision{Action: model.ActionCharge, Amps: 10},
	}
	s.Set(res)

	snap, ok := s.Latest()
	if !ok {
		t.Fatalf("expected snapshot")
	}
	if snap.Decision.Amps != 10 {
		t.Fatalf("wrong snapshot: %+v", snap.Decision)
	}
	if snap.Updated.IsZero() {
		t.Fatalf("updated timestamp not set")
	}

	s.Set(control.CycleResult{Decision: model.Decision{Action: model.ActionStop}})
	snap, _ = s.Latest()
	if snap.Decision.Action != model.ActionStop {
		t.Fatalf("expected latest to win, got %s", snap.Decision.Action)
	}
}
