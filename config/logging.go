package config

// LoggingConfig defines where daily log files are written.
type LoggingConfig struct {
	// Dir holds one file per day, named YYYY-MM-DD.log; the logs API serves
	// these files.
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "logs"
	}
}
