package control

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 15, h, m, 0, 0, time.UTC)
}

func TestWindowContains(t *testing.T) {
	w := NewWindow("07:00", "21:00")
	cases := []struct {
		t    time.Time
		want bool
	}{
		{at(6, 59), false},
		{at(7, 0), true},
		{at(12, 30), true},
		{at(20, 59), true},
		{at(21, 0), false},
		{at(23, 0), false},
	}
	for _, c := range cases {
		if got := w.Contains(c.t); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.t.Format("15:04"), got, c.want)
		}
	}
}

func TestWindowSpanningMidnight(t *testing.T) {
	w := NewWindow("22:00", "06:00")
	if !w.Contains(at(23, 0)) || !w.Contains(at(2, 0)) {
		t.Fatalf("expected window to span midnight")
	}
	if w.Contains(at(12, 0)) {
		t.Fatalf("noon must be outside a 22:00-06:00 window")
	}
}

func TestWindowAlwaysOpen(t *testing.T) {
	w := NewWindow("00:00", "00:00")
	if !w.Contains(at(3, 0)) {
		t.Fatalf("equal bounds must mean always open")
	}
}
