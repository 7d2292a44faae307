package model

// PhotovoltaicData is a snapshot of the energy system read from the inverter
// cloud API. All power values are in Watt.
type PhotovoltaicData struct {
	// SolarPower is the current photovoltaic production.
	SolarPower float64 `json:"solar_power"`
	// BatteryPower is the home battery power. Positive when discharging,
	// negative when charging.
	BatteryPower float64 `json:"battery_power"`
	// GridExchange is the grid power. Positive on import, negative on export.
	GridExchange float64 `json:"grid_exchange"`
	// StateOfCharge is the home battery charge state in percent.
	StateOfCharge float64 `json:"state_of_charge"`
	// Household is the derived total consumption:
	// solar + battery + grid covers everything drawing power behind the meter.
	Household float64 `json:"household"`
}

// NewPhotovoltaicData derives the household consumption from the raw readings.
func NewPhotovoltaicData(solar, battery, grid, soc float64) PhotovoltaicData {
	return PhotovoltaicData{
		SolarPower:    solar,
		BatteryPower:  battery,
		GridExchange:  grid,
		StateOfCharge: soc,
		Household:     solar + battery + grid,
	}
}
