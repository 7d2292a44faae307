// Package metrics defines the sink interfaces control cycles report into.
// Implementations live under infra/metrics.
package metrics

import (
	"time"

	"github.com/kilianp07/pvcharge/core/model"
)

// CycleEvent summarizes one control cycle for observability backends.
type CycleEvent struct {
	Time          time.Time
	SolarW        float64
	HouseholdW    float64
	SurplusW      float64
	ChargerPowerW float64
	StateOfCharge float64
	Action        model.Action
	Amps          int
	Phases        model.PhaseMode
	Applied       bool
	Error         string
}

// Sink records cycle events. Implementations must be safe for use from the
// control loop goroutine.
type Sink interface {
	RecordCycle(ev CycleEvent) error
}

// NopSink ignores all events.
type NopSink struct{}

func (NopSink) RecordCycle(CycleEvent) error { return nil }
