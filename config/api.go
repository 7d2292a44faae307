package config

// APIConfig defines the webservice settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// AuthToken protects the API when non-empty; requests must carry
	// "Authorization: Bearer <token>".
	AuthToken string `json:"auth_token"`
	// StaticDir is served for all unmatched routes (the web UI build).
	StaticDir string `json:"static_dir"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
}
