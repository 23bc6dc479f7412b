// Package api is the HTTP layer over the forecasting core: it assembles
// inputs, asks the optional prediction collaborator for a candidate, runs the
// engine, and persists results. No forecasting logic lives here.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhazlan/ordready/internal/demo"
	"github.com/mhazlan/ordready/internal/forecast"
	"github.com/mhazlan/ordready/internal/models"
	"github.com/mhazlan/ordready/internal/store"
)

// Predictor proposes raw forecast candidates. Implemented by predict.Client;
// nil disables the candidate path entirely.
type Predictor interface {
	Propose(ctx context.Context, input models.ForecastingInput) ([]byte, error)
}

type Server struct {
	store     *store.Store
	engine    *forecast.Engine
	predictor Predictor
	demoSeed  int64
	port      string
}

func NewServer(st *store.Store, engine *forecast.Engine, predictor Predictor, demoSeed int64, port string) *Server {
	return &Server{
		store:     st,
		engine:    engine,
		predictor: predictor,
		demoSeed:  demoSeed,
		port:      port,
	}
}

// Handler returns the route table. Exposed separately from Run so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/forecasts/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/forecasts", s.handleList)
	mux.HandleFunc("GET /api/forecasts/accuracy/metrics", s.handleAccuracyMetrics)
	mux.HandleFunc("GET /api/forecasts/{id}", s.handleGet)
	mux.HandleFunc("POST /api/forecasts/{id}/scenarios", s.handleScenarios)
	mux.HandleFunc("POST /api/forecasts/{id}/accuracy", s.handleAccuracy)
	mux.HandleFunc("GET /api/alerts/active", s.handleActiveAlerts)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// demoInput builds a synthetic input when a request supplies none.
func (s *Server) demoInput() models.ForecastingInput {
	return demo.NewGenerator(s.demoSeed, time.Now()).Input()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
