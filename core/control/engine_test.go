package control

import (
	"testing"

	"github.com/kilianp07/pvcharge/core/model"
)

func testConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

func pvSnapshot(solar, battery, grid, soc float64) model.PhotovoltaicData {
	return model.NewPhotovoltaicData(solar, battery, grid, soc)
}

func TestEvaluateChargeSinglePhase(t *testing.T) {
	e := NewEngine(testConfig())
	pv := pvSnapshot(4000, 0, -3500, 100)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarWaiting}

	dec := e.Evaluate(pv, status)
	if dec.Action != model.ActionCharge {
		t.Fatalf("expected charge, got %s (%s)", dec.Action, dec.Reason)
	}
	if dec.Phases != model.PhaseSingle {
		t.Fatalf("expected single phase, got %d", dec.Phases)
	}
	if dec.Amps != 15 {
		t.Fatalf("expected 15A for 3500W at 230V, got %dA", dec.Amps)
	}
	if dec.Force != model.ForceOn {
		t.Fatalf("expected force on, got %d", dec.Force)
	}
}

func TestEvaluateChargeThreePhase(t *testing.T) {
	e := NewEngine(testConfig())
	pv := pvSnapshot(7000, 0, -6000, 100)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarCharging}

	dec := e.Evaluate(pv, status)
	if dec.Action != model.ActionCharge {
		t.Fatalf("expected charge, got %s", dec.Action)
	}
	if dec.Phases != model.PhaseThree {
		t.Fatalf("expected three phases for 6000W, got %d", dec.Phases)
	}
	if dec.Amps != 8 {
		t.Fatalf("expected 8A for 6000W on three phases, got %dA", dec.Amps)
	}
}

func TestEvaluateStartMargin(t *testing.T) {
	e := NewEngine(testConfig())
	// 1450W is above the 1380W minimum but inside the 200W start margin.
	pv := pvSnapshot(2000, 0, -1450, 100)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarWaiting, FRC: model.ForceNeutral}

	dec := e.Evaluate(pv, status)
	if dec.Action != model.ActionHold {
		t.Fatalf("expected hold inside start margin, got %s", dec.Action)
	}

	// once charging is active the margin no longer applies
	e2 := NewEngine(testConfig())
	status.FRC = model.ForceOn
	dec = e2.Evaluate(pv, status)
	if dec.Action != model.ActionCharge {
		t.Fatalf("expected charge to continue at 1450W, got %s (%s)", dec.Action, dec.Reason)
	}
}

func TestEvaluateOffDelay(t *testing.T) {
	cfg := testConfig()
	cfg.SmoothingWindow = 1
	e := NewEngine(cfg)
	pv := pvSnapshot(500, 0, -100, 100)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarCharging, FRC: model.ForceOn}

	for i := 1; i < cfg.OffDelayCycles; i++ {
		dec := e.Evaluate(pv, status)
		if dec.Action != model.ActionHold {
			t.Fatalf("cycle %d: expected hold, got %s", i, dec.Action)
		}
	}
	dec := e.Evaluate(pv, status)
	if dec.Action != model.ActionStop {
		t.Fatalf("expected stop after %d cycles, got %s", cfg.OffDelayCycles, dec.Action)
	}
	if dec.Force != model.ForceOff {
		t.Fatalf("expected force off, got %d", dec.Force)
	}
}

func TestEvaluateBelowMinInactive(t *testing.T) {
	e := NewEngine(testConfig())
	pv := pvSnapshot(200, 0, 300, 100)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarWaiting, FRC: model.ForceNeutral}

	dec := e.Evaluate(pv, status)
	if dec.Action != model.ActionHold {
		t.Fatalf("expected hold when charging inactive, got %s", dec.Action)
	}
}

func TestSurplusExcludesChargerDraw(t *testing.T) {
	e := NewEngine(testConfig())
	// household 4000W of which 3000W is the charger itself
	pv := pvSnapshot(4500, 0, -500, 100)
	status := model.ChargerStatus{NRG: make([]float64, 16)}
	status.NRG[11] = 3000

	got := e.Surplus(pv, status)
	if got != 3500 {
		t.Fatalf("expected 3500W surplus, got %.0f", got)
	}
}

func TestSurplusBatteryReserve(t *testing.T) {
	cfg := testConfig()
	cfg.BatteryReserveW = 1000
	e := NewEngine(cfg)
	pv := pvSnapshot(4000, -1000, -2000, 50)
	status := model.ChargerStatus{}

	// household = 4000-1000-2000 = 1000, surplus = 3000 - 1000 reserve
	if got := e.Surplus(pv, status); got != 2000 {
		t.Fatalf("expected reserve applied below soc floor, got %.0f", got)
	}

	pv.StateOfCharge = 95
	pv = model.NewPhotovoltaicData(pv.SolarPower, pv.BatteryPower, pv.GridExchange, 95)
	if got := e.Surplus(pv, status); got != 3000 {
		t.Fatalf("expected no reserve above soc floor, got %.0f", got)
	}
}

func TestSmoothingDampensTransients(t *testing.T) {
	cfg := testConfig()
	cfg.SmoothingWindow = 4
	e := NewEngine(cfg)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarCharging, FRC: model.ForceOn}

	for i := 0; i < 4; i++ {
		e.Evaluate(pvSnapshot(4000, 0, -3500, 100), status)
	}
	// a single clouded sample must not drop the smoothed surplus below minimum
	dec := e.Evaluate(pvSnapshot(500, 0, -100, 100), status)
	if dec.Action != model.ActionCharge {
		t.Fatalf("expected smoothing to carry the transient, got %s (%s)", dec.Action, dec.Reason)
	}
}

func TestPhaseSwitchHysteresis(t *testing.T) {
	cfg := testConfig()
	cfg.SmoothingWindow = 1
	e := NewEngine(cfg)
	// threshold defaults to 3*6*230 = 4140W with a 500W margin
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarCharging, PSM: model.PhaseThree, FRC: model.ForceOn}

	dec := e.Evaluate(pvSnapshot(4500, 0, -4000, 100), status)
	if dec.Phases != model.PhaseThree {
		t.Fatalf("expected to stay on three phases at 4000W, got %d", dec.Phases)
	}
	dec = e.Evaluate(pvSnapshot(4000, 0, -3500, 100), status)
	if dec.Phases != model.PhaseSingle {
		t.Fatalf("expected downswitch below margin, got %d", dec.Phases)
	}

	status.PSM = model.PhaseSingle
	dec = e.Evaluate(pvSnapshot(5000, 0, -4500, 100), status)
	if dec.Phases != model.PhaseSingle {
		t.Fatalf("expected to stay single inside margin, got %d", dec.Phases)
	}
	dec = e.Evaluate(pvSnapshot(5500, 0, -5000, 100), status)
	if dec.Phases != model.PhaseThree {
		t.Fatalf("expected upswitch above margin, got %d", dec.Phases)
	}
}

func TestAmpsClamped(t *testing.T) {
	cfg := testConfig()
	cfg.SmoothingWindow = 1
	e := NewEngine(cfg)
	status := model.ChargerStatus{SurplusEnable: true, Car: model.CarCharging}

	dec := e.Evaluate(pvSnapshot(20000, 0, -19500, 100), status)
	if dec.Amps != cfg.MaxAmp {
		t.Fatalf("expected clamp to %dA, got %dA", cfg.MaxAmp, dec.Amps)
	}
}
