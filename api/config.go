package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/pvcharge/config"
)

// handleGetConfig returns the raw config file via GET /api/config.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b, err := os.ReadFile(s.opts.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "config file not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch strings.ToLower(filepath.Ext(s.opts.ConfigPath)) {
	case ".yaml", ".yml":
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(b)
}

// handleSetEnabled flips the enabled flag via PATCH /api/config/enabled.
func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Enabled == nil {
		http.Error(w, "body must be {\"enabled\": bool}", http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(s.opts.ConfigPath); err != nil {
		http.Error(w, "config file not found", http.StatusNotFound)
		return
	}
	if err := config.SetEnabled(s.opts.ConfigPath, *payload.Enabled); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Infof("enabled flag set to %v via API", *payload.Enabled)
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"message":"'enabled' set to %v"}`, *payload.Enabled)
}
