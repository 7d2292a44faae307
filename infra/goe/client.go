// Package goe talks to the local HTTP API of a go-e Charger.
package goe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/pvcharge/core/model"
	"github.com/kilianp07/pvcharge/infra/logger"
)

// statusFilter limits the status response to the keys the controller reads.
const statusFilter = "amp,psm,car,frc,nrg,fup,frm,spl3"

// Config defines the connection parameters for the charger.
type Config struct {
	// BaseURL is the charger API root, e.g. "http://192.168.1.40/api".
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("charger base_url is required")
	}
	return nil
}

// Client is the go-e Charger HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// NewClient creates a Client from the configuration.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     logger.New("goe-client"),
	}
}

// Status fetches the charger status, filtered to the controller's keys.
func (c *Client) Status(ctx context.Context) (model.ChargerStatus, error) {
	var status model.ChargerStatus
	u := fmt.Sprintf("%s/status?filter=%s", c.baseURL, url.QueryEscape(statusFilter))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return status, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return status, fmt.Errorf("fetch charger status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("charger status: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode charger status: %w", err)
	}
	return status, nil
}

// Apply pushes the decision to the charger. Only keys whose value differs from
// the current status are sent; an empty diff sends nothing at all.
func (c *Client) Apply(ctx context.Context, status model.ChargerStatus, dec model.Decision) (bool, error) {
	params := url.Values{}
	if dec.Force != status.FRC {
		params.Set("frc", strconv.Itoa(int(dec.Force)))
	}
	if dec.Action == model.ActionCharge {
		if dec.Amps != status.Amp {
			params.Set("amp", strconv.Itoa(dec.Amps))
		}
		if dec.Phases != status.PSM {
			params.Set("psm", strconv.Itoa(int(dec.Phases)))
		}
	}
	if len(params) == 0 {
		// avoid unnecessary api calls
		return false, nil
	}
	return true, c.set(ctx, params)
}

// Disable forces charging off regardless of the current settings.
func (c *Client) Disable(ctx context.Context, status model.ChargerStatus) error {
	if status.FRC == model.ForceOff {
		return nil
	}
	params := url.Values{}
	params.Set("frc", strconv.Itoa(int(model.ForceOff)))
	return c.set(ctx, params)
}

func (c *Client) set(ctx context.Context, params url.Values) error {
	u := fmt.Sprintf("%s/set?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("set charger parameters %v: %w", params, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("set charger parameters %v: unexpected status %d", params, resp.StatusCode)
	}
	c.log.Debugw("charger parameters set", map[string]any{"params": params.Encode()})
	return nil
}
