// Package server exposes the REST surface for contract registration and
// event reads, plus a second listener that proxies query traffic to the
// indexer's own API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/domain"
	"github.com/chainreport/indexerd/internal/usecase"
)

// Server hosts both HTTP listeners.
type Server struct {
	cfg      *config.RuntimeConfig
	log      *slog.Logger
	register *usecase.RegisterContracts
	events   *usecase.QueryEvents
	list     *usecase.ListContracts
}

// NewServer wires the REST surface to its use cases.
func NewServer(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	register *usecase.RegisterContracts,
	events *usecase.QueryEvents,
	list *usecase.ListContracts,
) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		register: register,
		events:   events,
		list:     list,
	}
}

// Router builds the REST handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/contracts", s.handleRegister)
		api.Get("/contracts", s.handleListContracts)
		api.Get("/events/{id}/{event}", s.handleEvents)
	})

	return r
}

// registerRequest is the batch registration payload.
type registerRequest struct {
	Contracts []domain.RegistrationRequest `json:"contracts"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.register.Execute(r.Context(), req.Contracts)
	if err != nil {
		// Size violations reject the whole batch before any processing.
		if errors.Is(err, domain.ErrBatchTooLarge) || errors.Is(err, domain.ErrNoContracts) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	status := http.StatusOK
	if !result.Success {
		// A request-shaped failure (all items invalid) is the caller's
		// fault; a commit-stage storage failure is ours.
		status = http.StatusBadRequest
		var serr *domain.StorageError
		if errors.As(result.Err, &serr) {
			status = http.StatusInternalServerError
		}
	}
	resp := map[string]any{
		"success": result.Success,
		"results": result.Results,
	}
	if result.Error != "" {
		resp["error"] = result.Error
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	result, err := s.list.Execute(r.Context())
	if err != nil {
		s.log.Error("contract listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read manifest")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"project":   result.Project,
		"contracts": manifestContractsJSON(result.Contracts),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	events, err := s.events.Execute(r.Context(), usecase.QueryEventsParams{
		IndexerID: chi.URLParam(r, "id"),
		Event:     chi.URLParam(r, "event"),
		Limit:     limit,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.log.Error("event query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "event query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"events":  events,
	})
}

// manifestContractsJSON reshapes YAML-tagged manifest entries for the
// JSON surface.
func manifestContractsJSON(contracts []domain.ManifestContract) []map[string]any {
	out := make([]map[string]any, 0, len(contracts))
	for _, c := range contracts {
		details := make([]map[string]string, 0, len(c.Details))
		for _, d := range c.Details {
			details = append(details, map[string]string{
				"network":     d.Network,
				"address":     d.Address,
				"start_block": d.StartBlock,
			})
		}
		out = append(out, map[string]any{
			"name":    c.Name,
			"details": details,
			"abi":     c.Abi,
		})
	}
	return out
}

// Run serves both listeners until ctx is cancelled, then shuts them down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	rest := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.RESTPort),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	proxy := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.ProxyPort),
		Handler:           s.proxyHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		s.log.Info("rest listener up", "port", s.cfg.RESTPort)
		if err := rest.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		s.log.Info("proxy listener up", "port", s.cfg.ProxyPort, "target", s.cfg.IndexerPort)
		if err := proxy.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = rest.Shutdown(shutdownCtx)
	_ = proxy.Shutdown(shutdownCtx)
	return nil
}
