// Package viessmann reads photovoltaic data from the Viessmann IoT API.
package viessmann

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/pvcharge/core/model"
	"github.com/kilianp07/pvcharge/infra/logger"
)

// Feature names read from the device.
const (
	featureSolarProduction = "photovoltaic.production.current"
	featureBatteryPower    = "ess.power"
	featureGridExchange    = "pcc.transfer.power.exchange"
	featureStateOfCharge   = "ess.stateOfCharge"
)

// Client fetches photovoltaic data, refreshing the access token as needed.
type Client struct {
	cfg  Config
	auth *Authenticator
	http *http.Client
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client from the configuration.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	log := logger.New("viessmann-client")
	hc := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	auth, err := NewAuthenticator(cfg.IAM, hc, log)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, auth: auth, http: hc, log: log, now: time.Now}, nil
}

// Token returns a valid access token, preferring the cache file.
func (c *Client) Token(ctx context.Context) (string, error) {
	if cached := loadCachedToken(c.cfg.TokenCache); cached != "" {
		if tokenValid(cached, c.now()) {
			c.log.Infof("using cached access token")
			return cached, nil
		}
		c.log.Infof("cached token expired, requesting new token")
	}
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("retrieve access token: %w", err)
	}
	c.log.Infof("obtained new access token")
	if err := saveToken(c.cfg.TokenCache, token); err != nil {
		c.log.Warnf("save token cache: %v", err)
	}
	return token, nil
}

type featureValue struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type featureProperties struct {
	Value featureValue `json:"value"`
}

type feature struct {
	Feature    string            `json:"feature"`
	Properties featureProperties `json:"properties"`
}

type featureResponse struct {
	Data []feature `json:"data"`
}

func (r featureResponse) value(name string) (float64, bool) {
	for _, f := range r.Data {
		if f.Feature == name {
			return f.Properties.Value.Value, true
		}
	}
	return 0, false
}

// deviceFeatures fetches the filtered feature list for the installation.
func (c *Client) deviceFeatures(ctx context.Context, token string) (featureResponse, error) {
	var out featureResponse
	iot := c.cfg.IoT
	base := fmt.Sprintf("%s/features/installations/%s/gateways/%s/devices/0/features",
		iot.BaseURL, iot.InstallationID, iot.GatewayID)
	params := url.Values{"filter": {
		featureSolarProduction,
		featureBatteryPower,
		featureGridExchange,
		featureStateOfCharge,
	}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("fetch device features: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("device features: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode device features: %w", err)
	}
	return out, nil
}

// PhotovoltaicData assembles the current snapshot from the device features.
// The solar production feature reports kW and is converted to Watt.
func (c *Client) PhotovoltaicData(ctx context.Context) (model.PhotovoltaicData, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return model.PhotovoltaicData{}, err
	}
	features, err := c.deviceFeatures(ctx, token)
	if err != nil {
		return model.PhotovoltaicData{}, err
	}

	solar, ok := features.value(featureSolarProduction)
	if !ok {
		return model.PhotovoltaicData{}, fmt.Errorf("feature %s missing in response", featureSolarProduction)
	}
	battery, _ := features.value(featureBatteryPower)
	grid, _ := features.value(featureGridExchange)
	soc, _ := features.value(featureStateOfCharge)

	return model.NewPhotovoltaicData(solar*1000, battery, grid, soc), nil
}
