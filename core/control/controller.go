package control

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/pvcharge/core/logger"
	"github.com/kilianp07/pvcharge/core/model"
)

// PVSource provides the current photovoltaic snapshot.
type PVSource interface {
	PhotovoltaicData(ctx context.Context) (model.PhotovoltaicData, error)
}

// Charger is the subset of the charger client used by the controller.
type Charger interface {
	Status(ctx context.Context) (model.ChargerStatus, error)
	// Apply pushes the decision to the charger. It reports whether a request
	// was actually sent; settings already matching the decision send nothing.
	Apply(ctx context.Context, status model.ChargerStatus, dec model.Decision) (bool, error)
}

// CycleResult captures one control cycle end to end.
type CycleResult struct {
	Time     time.Time              `json:"time"`
	PV       model.PhotovoltaicData `json:"pv"`
	Status   model.ChargerStatus    `json:"charger"`
	Decision model.Decision         `json:"decision"`
	Applied  bool                   `json:"applied"`
	Error    string                 `json:"error,omitempty"`
}

// Controller runs control cycles against a charger and a PV source.
type Controller struct {
	pv      PVSource
	charger Charger
	engine  *Engine
	window  Window
	log     logger.Logger
}

// NewController wires a controller from its collaborators.
func NewController(pv PVSource, charger Charger, engine *Engine, window Window, log logger.Logger) *Controller {
	return &Controller{pv: pv, charger: charger, engine: engine, window: window, log: log}
}

// Readiness checks whether the charger is in a state worth controlling.
// The rules mirror the charger's own surplus handling: nothing to do when
// surplus mode is off, no vehicle is connected, or the charge is complete.
func Readiness(status model.ChargerStatus) (bool, string) {
	if !status.SurplusEnable {
		return false, "surplus mode disabled in charger"
	}
	if status.Car == model.CarIdle {
		return false, "vehicle not connected to charger"
	}
	if status.Car == model.CarComplete && status.FRC == model.ForceNeutral {
		return false, "vehicle completely charged"
	}
	return true, ""
}

// RunCycle executes one control cycle at the given time.
func (c *Controller) RunCycle(ctx context.Context, now time.Time) (CycleResult, error) {
	res := CycleResult{Time: now}

	status, err := c.charger.Status(ctx)
	if err != nil {
		res.Error = err.Error()
		return res, fmt.Errorf("charger status: %w", err)
	}
	res.Status = status

	if !c.window.Contains(now) {
		res.Decision = model.Decision{Action: model.ActionSkip, Reason: "outside daylight window"}
		c.engine.Reset()
		if status.FRC == model.ForceOn {
			// release the charger instead of leaving it forced on overnight
			res.Decision = model.Decision{Action: model.ActionStop, Force: model.ForceNeutral, Reason: "outside daylight window, releasing charger"}
			res.Applied, err = c.charger.Apply(ctx, status, res.Decision)
			if err != nil {
				res.Error = err.Error()
				return res, fmt.Errorf("release charger: %w", err)
			}
		}
		c.log.Infof("%s", res.Decision.Reason)
		return res, nil
	}

	if ok, reason := Readiness(status); !ok {
		res.Decision = model.Decision{Action: model.ActionSkip, Reason: reason}
		c.engine.Reset()
		c.log.Infof("%s, skipping cycle", reason)
		return res, nil
	}

	pv, err := c.pv.PhotovoltaicData(ctx)
	if err != nil {
		res.Error = err.Error()
		return res, fmt.Errorf("photovoltaic data: %w", err)
	}
	res.PV = pv

	dec := c.engine.Evaluate(pv, status)
	res.Decision = dec
	c.log.Debugw("cycle evaluated", map[string]any{
		"surplus_w": dec.SurplusW,
		"action":    dec.Action,
		"amps":      dec.Amps,
		"phases":    dec.Phases,
	})

	if dec.Action == model.ActionCharge || dec.Action == model.ActionStop {
		res.Applied, err = c.charger.Apply(ctx, status, dec)
		if err != nil {
			res.Error = err.Error()
			return res, fmt.Errorf("apply decision: %w", err)
		}
	}
	c.log.Infof("%s", dec.Reason)
	return res, nil
}
