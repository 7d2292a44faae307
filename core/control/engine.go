package control

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/pvcharge/core/model"
)

// Engine evaluates the surplus policy. It keeps a short history of surplus
// samples for smoothing and hysteresis, so one Engine serves one charger.
// Engine is not safe for concurrent use; cycles run sequentially.
type Engine struct {
	cfg      Config
	samples  []float64
	belowMin int
}

// NewEngine creates an Engine for the given policy parameters.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Surplus computes the raw power available for charging: production minus all
// consumption except the charger itself, minus the battery reserve while the
// home battery is below its floor.
func (e *Engine) Surplus(pv model.PhotovoltaicData, status model.ChargerStatus) float64 {
	other := pv.Household - status.ChargingPower()
	surplus := pv.SolarPower - other
	if pv.StateOfCharge < e.cfg.BatterySoCFloor {
		surplus -= e.cfg.BatteryReserveW
	}
	return surplus
}

// Evaluate records the current surplus sample and returns the decision for
// this cycle.
func (e *Engine) Evaluate(pv model.PhotovoltaicData, status model.ChargerStatus) model.Decision {
	smoothed := e.observe(e.Surplus(pv, status))

	minW := float64(e.cfg.MinAmp) * e.cfg.VoltageV
	if smoothed < minW+e.startMargin(status) {
		return e.stopOrHold(status, smoothed, minW)
	}
	e.belowMin = 0

	phases := e.phaseFor(status, smoothed)
	count := 1
	if phases == model.PhaseThree {
		count = 3
	}
	amps := int(smoothed / (float64(count) * e.cfg.VoltageV))
	if amps < e.cfg.MinAmp {
		amps = e.cfg.MinAmp
	}
	if amps > e.cfg.MaxAmp {
		amps = e.cfg.MaxAmp
	}
	return model.Decision{
		Action:   model.ActionCharge,
		Force:    model.ForceOn,
		Amps:     amps,
		Phases:   phases,
		SurplusW: smoothed,
		Reason:   fmt.Sprintf("surplus %.0fW allows %dA on %d phase(s)", smoothed, amps, count),
	}
}

// observe appends a sample to the sliding window and returns the mean.
func (e *Engine) observe(surplus float64) float64 {
	e.samples = append(e.samples, surplus)
	if len(e.samples) > e.cfg.SmoothingWindow {
		e.samples = e.samples[len(e.samples)-e.cfg.SmoothingWindow:]
	}
	return stat.Mean(e.samples, nil)
}

// startMargin asks for extra headroom before starting, but not for staying on.
func (e *Engine) startMargin(status model.ChargerStatus) float64 {
	if status.FRC == model.ForceOn {
		return 0
	}
	return e.cfg.StartMarginW
}

func (e *Engine) stopOrHold(status model.ChargerStatus, smoothed, minW float64) model.Decision {
	if status.FRC != model.ForceOn {
		e.belowMin = 0
		return model.Decision{
			Action:   model.ActionHold,
			Force:    status.FRC,
			SurplusW: smoothed,
			Reason:   fmt.Sprintf("surplus %.0fW below %.0fW minimum, charging not active", smoothed, minW),
		}
	}
	e.belowMin++
	if e.belowMin < e.cfg.OffDelayCycles {
		return model.Decision{
			Action:   model.ActionHold,
			Force:    model.ForceOn,
			Amps:     e.cfg.MinAmp,
			Phases:   model.PhaseSingle,
			SurplusW: smoothed,
			Reason:   fmt.Sprintf("surplus %.0fW below minimum (%d/%d before stop)", smoothed, e.belowMin, e.cfg.OffDelayCycles),
		}
	}
	e.belowMin = 0
	return model.Decision{
		Action:   model.ActionStop,
		Force:    model.ForceOff,
		SurplusW: smoothed,
		Reason:   fmt.Sprintf("surplus %.0fW stayed below %.0fW minimum", smoothed, minW),
	}
}

// phaseFor applies the phase switch hysteresis.
func (e *Engine) phaseFor(status model.ChargerStatus, smoothed float64) model.PhaseMode {
	thr := e.cfg.ThreePhaseThresholdW
	if thr == 0 {
		thr = status.ThreePhaseW
	}
	if thr == 0 {
		thr = 3 * float64(e.cfg.MinAmp) * e.cfg.VoltageV
	}
	if status.PSM == model.PhaseThree {
		if smoothed < thr-e.cfg.PhaseSwitchMarginW {
			return model.PhaseSingle
		}
		return model.PhaseThree
	}
	if smoothed >= thr+e.cfg.PhaseSwitchMarginW {
		return model.PhaseThree
	}
	return model.PhaseSingle
}

// Reset clears the smoothing window and hysteresis counters, used when the
// controller re-enters the daylight window after a long pause.
func (e *Engine) Reset() {
	e.samples = e.samples[:0]
	e.belowMin = 0
}
