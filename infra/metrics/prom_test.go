package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/pvcharge/core/metrics"
	"github.com/kilianp07/pvcharge/core/model"
)

func TestPromSinkRecordCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ev := coremetrics.CycleEvent{
		Time:          time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		SolarW:        3200,
		HouseholdW:    900,
		SurplusW:      2300,
		ChargerPowerW: 0,
		StateOfCharge: 87,
		Action:        model.ActionCharge,
		Amps:          10,
		Applied:       true,
	}
	if err := sink.RecordCycle(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := testutil.ToFloat64(sink.surplus); got != 2300 {
		t.Fatalf("surplus gauge = %v", got)
	}
	if got := testutil.ToFloat64(sink.cycles.WithLabelValues("charge", "true")); got != 1 {
		t.Fatalf("cycle counter = %v", got)
	}

	expected := strings.NewReader(`
# HELP pvcharge_charge_current_amps Requested charging current
# TYPE pvcharge_charge_current_amps gauge
pvcharge_charge_current_amps 10
`)
	if err := testutil.GatherAndCompare(reg, expected, "pvcharge_charge_current_amps"); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	multi := NewMultiSink(prom, coremetrics.NopSink{})
	if err := multi.RecordCycle(coremetrics.CycleEvent{Action: model.ActionStop}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(prom.cycles.WithLabelValues("stop", "false")); got != 1 {
		t.Fatalf("counter = %v", got)
	}
}
