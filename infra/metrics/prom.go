package metrics

import (
	coremetrics "github.com/kilianp07/pvcharge/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes control cycle data as Prometheus metrics.
type PromSink struct {
	cycles      *prometheus.CounterVec
	solar       prometheus.Gauge
	household   prometheus.Gauge
	surplus     prometheus.Gauge
	charger     prometheus.Gauge
	soc         prometheus.Gauge
	chargeAmps  prometheus.Gauge
	lastCycleTS prometheus.Gauge
}

// NewPromSink registers cycle metrics on the default Prometheus registerer.
// The Prometheus server is started separately on cfg.PrometheusAddr.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	s := &PromSink{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pvcharge_cycles_total",
			Help: "Control cycles by action",
		}, []string{"action", "applied"}),
		solar: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_solar_power_watts",
			Help: "Current photovoltaic production",
		}),
		household: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_household_power_watts",
			Help: "Current household consumption",
		}),
		surplus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_surplus_power_watts",
			Help: "Smoothed surplus the last decision was based on",
		}),
		charger: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_charger_power_watts",
			Help: "Current charging power",
		}),
		soc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_battery_soc_percent",
			Help: "Home battery state of charge",
		}),
		chargeAmps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_charge_current_amps",
			Help: "Requested charging current",
		}),
		lastCycleTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvcharge_last_cycle_timestamp_seconds",
			Help: "Unix timestamp of the last control cycle",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		s.cycles, s.solar, s.household, s.surplus, s.charger, s.soc, s.chargeAmps, s.lastCycleTS,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordCycle updates all gauges and the cycle counter.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	applied := "false"
	if ev.Applied {
		applied = "true"
	}
	s.cycles.WithLabelValues(string(ev.Action), applied).Inc()
	s.solar.Set(ev.SolarW)
	s.household.Set(ev.HouseholdW)
	s.surplus.Set(ev.SurplusW)
	s.charger.Set(ev.ChargerPowerW)
	s.soc.Set(ev.StateOfCharge)
	s.chargeAmps.Set(float64(ev.Amps))
	s.lastCycleTS.Set(float64(ev.Time.Unix()))
	return nil
}
