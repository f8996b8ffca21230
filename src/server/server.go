// Package server exposes a small webhook endpoint so a version-control
// host can push events into the trigger evaluator instead of slipway
// polling or being invoked per-job.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slipway-ci/slipway/src/config"
	"github.com/slipway-ci/slipway/src/event"
	"github.com/slipway-ci/slipway/src/trigger"
)

// RunFunc executes the pipelines selected for an event.
type RunFunc func(ctx context.Context, ev event.Event, plans []trigger.Plan)

// Server receives push events over HTTP and evaluates the trigger policy.
type Server struct {
	Cfg *config.Config
	Run RunFunc
}

type eventPayload struct {
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
}

type eventResponse struct {
	Ref       string   `json:"ref"`
	Kind      string   `json:"kind"`
	Pipelines []string `json:"pipelines"`
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/events", s.handleEvent)
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleEvent decodes a push event, answers with the selected pipelines,
// and runs them in the background. A ref selecting nothing is still a 202:
// trigger mismatch is a valid no-op, not an error.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if payload.Ref == "" {
		http.Error(w, "missing ref", http.StatusBadRequest)
		return
	}

	ev := event.Normalize(payload.Ref, event.Kind(payload.Kind))
	plans := trigger.Evaluate(s.Cfg, ev)

	resp := eventResponse{Ref: ev.Ref, Kind: string(ev.Kind)}
	for _, p := range plans {
		resp.Pipelines = append(resp.Pipelines, p.Name)
	}

	if len(plans) > 0 && s.Run != nil {
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					fmt.Fprintf(os.Stderr, "panic in pipeline run: %v\n", rec)
				}
			}()
			s.Run(context.Background(), ev, plans)
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}
