package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/gustycube/repuhub/internal/analytics"
	"github.com/gustycube/repuhub/internal/checker"
	"github.com/gustycube/repuhub/internal/indicator"
	"github.com/gustycube/repuhub/internal/logging"
	"github.com/gustycube/repuhub/internal/provider"
)

const credentialCookiePrefix = "apikey_"

// Server is the HTTP front door for the lookup pipeline.
type Server struct {
	checker        *checker.Checker
	registry       *provider.Registry
	stats          analytics.Store
	log            *logging.Logger
	router         *mux.Router
	requestTimeout time.Duration
}

func New(chk *checker.Checker, reg *provider.Registry, stats analytics.Store, log *logging.Logger, requestTimeout time.Duration) *Server {
	s := &Server{
		checker:        chk,
		registry:       reg,
		stats:          stats,
		log:            log,
		router:         mux.NewRouter(),
		requestTimeout: requestTimeout,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/check", s.handleCheck).Methods(http.MethodPost)
	s.router.HandleFunc("/api/check/bulk", s.handleBulkCheck).Methods(http.MethodPost)
	s.router.HandleFunc("/api/analytics", s.handleAnalytics).Methods(http.MethodGet)
	s.router.HandleFunc("/api/providers", s.handleProviders).Methods(http.MethodGet)
	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(s.handlePreflight)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

type checkRequest struct {
	Target string         `json:"target"`
	Kind   indicator.Kind `json:"type,omitempty"`
}

type bulkCheckRequest struct {
	Targets []string `json:"targets"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format or internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	credentials := credentialsFromCookies(r)
	provider.ApplySharedCredentials(credentials)

	res, err := s.checker.Check(ctx, req.Target, req.Kind, credentials)
	if err != nil {
		s.writeCheckError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBulkCheck(w http.ResponseWriter, r *http.Request) {
	var req bulkCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format or internal error")
		return
	}
	if len(req.Targets) == 0 {
		writeError(w, http.StatusBadRequest, "Missing or invalid field: targets (must be non-empty array)")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	credentials := credentialsFromCookies(r)
	provider.ApplySharedCredentials(credentials)

	writeJSON(w, http.StatusOK, s.checker.CheckBulk(ctx, req.Targets, credentials))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot(r.Context()))
}

type providerInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	provider.Capability
	HasCredential bool `json:"hasApiKey"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	credentials := credentialsFromCookies(r)
	provider.ApplySharedCredentials(credentials)

	entries := s.registry.Entries()
	infos := make([]providerInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, providerInfo{
			Name:          e.Name,
			DisplayName:   displayName(e.Name),
			Capability:    e.Caps,
			HasCredential: credentials[e.Name] != "" || !e.Caps.RequiresCredential,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": infos})
}

func (s *Server) writeCheckError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checker.ErrEmptyTarget):
		writeError(w, http.StatusBadRequest, "Missing required field: target")
	case errors.Is(err, checker.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "Invalid input: unable to detect type (IP, domain, or hash)")
	case errors.Is(err, checker.ErrNoEligibleProviders):
		writeError(w, http.StatusBadRequest, "No providers configured for this input type. Please add API keys in settings.")
	default:
		s.log.Errorw("check failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Invalid request format or internal error")
	}
}

// credentialsFromCookies collects per-provider credentials from apikey_*
// cookies. Empty values are dropped.
func credentialsFromCookies(r *http.Request) map[string]string {
	credentials := make(map[string]string)
	for _, c := range r.Cookies() {
		if !strings.HasPrefix(c.Name, credentialCookiePrefix) {
			continue
		}
		name := strings.TrimPrefix(c.Name, credentialCookiePrefix)
		if name == "" || c.Value == "" {
			continue
		}
		credentials[name] = c.Value
	}
	return credentials
}

func displayName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
