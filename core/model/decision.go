package model

// Action classifies the outcome of a control cycle.
type Action string

const (
	// ActionCharge enables or adjusts charging.
	ActionCharge Action = "charge"
	// ActionStop forces charging off.
	ActionStop Action = "stop"
	// ActionHold keeps the current charger settings.
	ActionHold Action = "hold"
	// ActionSkip means the cycle did not act (readiness gate, window, disabled).
	ActionSkip Action = "skip"
)

// Decision is the outcome of one evaluation of the surplus policy.
type Decision struct {
	Action Action     `json:"action"`
	Force  ForceState `json:"force"`
	Amps   int        `json:"amps"`
	Phases PhaseMode  `json:"phases"`
	// SurplusW is the smoothed surplus the decision was based on.
	SurplusW float64 `json:"surplus_w"`
	Reason   string  `json:"reason"`
}
