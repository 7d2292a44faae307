package history

import (
	"context"
	"time"

	"github.com/kilianp07/pvcharge/core/control"
	"github.com/kilianp07/pvcharge/core/model"
)

// Query defines filters for retrieving cycle records.
type Query struct {
	Start  time.Time
	End    time.Time
	Action model.Action
}

// Store persists control cycle results and supports querying.
type Store interface {
	Append(ctx context.Context, rec control.CycleResult) error
	Query(ctx context.Context, q Query) ([]control.CycleResult, error)
	Close() error
}

// Config selects and locates the history backend.
type Config struct {
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "history.jsonl"
	}
}

// New creates the store selected by the configuration.
func New(cfg Config) (Store, error) {
	if cfg.Backend == "sqlite" {
		return NewSQLiteStore(cfg.Path)
	}
	return NewJSONLStore(cfg.Path)
}

func (q Query) matches(rec control.CycleResult) bool {
	if !q.Start.IsZero() && rec.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Time.After(q.End) {
		return false
	}
	if q.Action != "" && rec.Decision.Action != q.Action {
		return false
	}
	return true
}
