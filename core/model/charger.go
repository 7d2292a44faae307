package model

import "encoding/json"

// CarState reports the vehicle connection state of the charger.
type CarState int

const (
	CarUnknown  CarState = 0
	CarIdle     CarState = 1 // no vehicle connected
	CarCharging CarState = 2
	CarWaiting  CarState = 3 // vehicle connected, waiting for release
	CarComplete CarState = 4 // charge finished, vehicle still connected
)

// ForceState is the charger's forced charging state.
type ForceState int

const (
	ForceNeutral ForceState = 0
	ForceOff     ForceState = 1
	ForceOn      ForceState = 2
)

// PhaseMode is the charger's phase switch mode.
type PhaseMode int

const (
	PhaseAuto   PhaseMode = 0
	PhaseSingle PhaseMode = 1
	PhaseThree  PhaseMode = 2
)

// ChargerStatus is the subset of the go-e Charger status used by the
// controller. Field names follow the charger's API keys.
type ChargerStatus struct {
	Amp           int             `json:"amp"`
	PSM           PhaseMode       `json:"psm"`
	Car           CarState        `json:"car"`
	FRC           ForceState      `json:"frc"`
	SurplusEnable bool            `json:"fup"`
	ThreePhaseW   float64         `json:"spl3"`
	NRG           []float64       `json:"nrg"`
	FRM           json.RawMessage `json:"frm,omitempty"`
}

// nrgPowerIndex is the position of the total charging power in the nrg array.
const nrgPowerIndex = 11

// ChargingPower returns the total power currently drawn by the charger in Watt.
func (s ChargerStatus) ChargingPower() float64 {
	if len(s.NRG) > nrgPowerIndex {
		return s.NRG[nrgPowerIndex]
	}
	return 0
}
