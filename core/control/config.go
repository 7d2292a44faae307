package control

import (
	"fmt"
	"time"
)

// Config defines the surplus policy parameters loaded from configuration.
type Config struct {
	// MinAmp and MaxAmp bound the charging current request.
	MinAmp int `json:"min_amp"`
	MaxAmp int `json:"max_amp"`
	// VoltageV is the nominal phase voltage used for power/current conversion.
	VoltageV float64 `json:"voltage_v"`
	// StartMarginW is added to the single-phase minimum before charging starts.
	StartMarginW float64 `json:"start_margin_w"`
	// OffDelayCycles is the number of consecutive below-minimum cycles required
	// before charging is forced off.
	OffDelayCycles int `json:"off_delay_cycles"`
	// ThreePhaseThresholdW switches to three phases above this surplus.
	// Zero falls back to the charger's own spl3 setting.
	ThreePhaseThresholdW float64 `json:"three_phase_threshold_w"`
	// PhaseSwitchMarginW is the hysteresis band around the phase threshold.
	PhaseSwitchMarginW float64 `json:"phase_switch_margin_w"`
	// BatteryReserveW is withheld from the surplus while the home battery is
	// below BatterySoCFloor percent.
	BatteryReserveW float64 `json:"battery_reserve_w"`
	BatterySoCFloor float64 `json:"battery_soc_floor"`
	// SmoothingWindow is the number of surplus samples averaged before
	// threshold comparisons.
	SmoothingWindow int `json:"smoothing_window"`
	// IntervalMinutes is the control cycle cadence in serve mode.
	IntervalMinutes int `json:"interval_minutes"`
	// WindowStart and WindowEnd bound the daylight window ("HH:MM").
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MinAmp == 0 {
		c.MinAmp = 6
	}
	if c.MaxAmp == 0 {
		c.MaxAmp = 16
	}
	if c.VoltageV == 0 {
		c.VoltageV = 230
	}
	if c.StartMarginW == 0 {
		c.StartMarginW = 200
	}
	if c.OffDelayCycles == 0 {
		c.OffDelayCycles = 3
	}
	if c.PhaseSwitchMarginW == 0 {
		c.PhaseSwitchMarginW = 500
	}
	if c.BatterySoCFloor == 0 {
		c.BatterySoCFloor = 80
	}
	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = 4
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}
	if c.WindowStart == "" {
		c.WindowStart = "07:00"
	}
	if c.WindowEnd == "" {
		c.WindowEnd = "21:00"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MinAmp < 6 {
		return fmt.Errorf("min_amp must be at least 6, got %d", c.MinAmp)
	}
	if c.MaxAmp < c.MinAmp {
		return fmt.Errorf("max_amp %d below min_amp %d", c.MaxAmp, c.MinAmp)
	}
	if c.VoltageV <= 0 {
		return fmt.Errorf("voltage_v must be positive")
	}
	if c.SmoothingWindow <= 0 {
		return fmt.Errorf("smoothing_window must be positive")
	}
	if c.IntervalMinutes <= 0 {
		return fmt.Errorf("interval_minutes must be positive")
	}
	if _, err := time.Parse("15:04", c.WindowStart); err != nil {
		return fmt.Errorf("window_start: %w", err)
	}
	if _, err := time.Parse("15:04", c.WindowEnd); err != nil {
		return fmt.Errorf("window_end: %w", err)
	}
	return nil
}

// Interval returns the control cycle cadence as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}
