// Package api exposes the webservice: log files, config toggling, the live
// controller status and the cycle history, plus the static web UI.
package api

import (
	"net/http"

	"github.com/kilianp07/pvcharge/core/history"
	"github.com/kilianp07/pvcharge/core/statusstore"
	"github.com/kilianp07/pvcharge/infra/logger"
)

// Options wires the handler dependencies.
type Options struct {
	LogDir     string
	ConfigPath string
	StaticDir  string
	// AuthToken protects the /api routes when non-empty.
	AuthToken string
	Status    statusstore.Store
	History   history.Store
	Logger    logger.Logger
}

// Server holds the webservice handlers.
type Server struct {
	opts Options
	log  logger.Logger
}

// NewHandler builds the http.Handler for the webservice.
func NewHandler(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.New("api")
	}
	s := &Server{opts: opts, log: log}

	mux := http.NewServeMux()
	mux.Handle("/api/logs", s.auth(http.HandlerFunc(s.handleListLogs)))
	mux.Handle("/api/logs/", s.auth(http.HandlerFunc(s.handleReadLog)))
	mux.Handle("/api/config", s.auth(http.HandlerFunc(s.handleGetConfig)))
	mux.Handle("/api/config/enabled", s.auth(http.HandlerFunc(s.handleSetEnabled)))
	mux.Handle("/api/status", s.auth(http.HandlerFunc(s.handleStatus)))
	mux.Handle("/api/history", s.auth(http.HandlerFunc(s.handleHistory)))
	mux.HandleFunc("/", s.handleStatic)
	return mux
}

// auth enforces the bearer token on API routes.
// Requests must include an Authorization header with "Bearer <token>" when the
// token is non-empty.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AuthToken != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.opts.AuthToken {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
