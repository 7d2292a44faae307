package viessmann

import "fmt"

// IAMConfig holds the identity provider settings for the Viessmann account.
type IAMConfig struct {
	BaseURL     string `json:"base_url"`
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	UsePKCEFlow bool   `json:"use_pkce_flow"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// IoTConfig locates the installation in the Viessmann IoT API.
type IoTConfig struct {
	BaseURL        string `json:"base_url"`
	InstallationID string `json:"installation_id"`
	GatewayID      string `json:"gateway_id"`
}

// Config defines the Viessmann API access.
type Config struct {
	IAM IAMConfig `json:"iam"`
	IoT IoTConfig `json:"iot"`
	// TokenCache is the file used to persist the access token between runs.
	TokenCache     string `json:"token_cache"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TokenCache == "" {
		c.TokenCache = "token.json"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 15
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.IAM.BaseURL == "" {
		return fmt.Errorf("viessmann iam base_url is required")
	}
	if c.IAM.ClientID == "" {
		return fmt.Errorf("viessmann iam client_id is required")
	}
	if c.IAM.Username == "" || c.IAM.Password == "" {
		return fmt.Errorf("viessmann iam credentials are required")
	}
	if c.IoT.BaseURL == "" {
		return fmt.Errorf("viessmann iot base_url is required")
	}
	if c.IoT.InstallationID == "" || c.IoT.GatewayID == "" {
		return fmt.Errorf("viessmann iot installation_id and gateway_id are required")
	}
	return nil
}
