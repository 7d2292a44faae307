package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// handleListLogs returns the daily log file names via GET /api/logs.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := os.ReadDir(s.opts.LogDir)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	logs := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e.Name())
		}
	}
	sort.Strings(logs)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(logs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleReadLog serves one log file via GET /api/logs/{file}.
// "today" and "yesterday" resolve to the corresponding daily file, and a
// missing ".log" suffix is added.
func (s *Server) handleReadLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/logs/")
	switch name {
	case "today":
		name = time.Now().Format("2006-01-02")
	case "yesterday":
		name = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	if name != filepath.Base(name) {
		http.Error(w, "invalid log file name", http.StatusBadRequest)
		return
	}
	path := filepath.Join(s.opts.LogDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.Error(w, "log file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.ServeFile(w, r, path)
}
