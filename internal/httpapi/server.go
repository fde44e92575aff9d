// Package httpapi serves backtest runs over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"alphabench/internal/engine"
	"alphabench/internal/metrics"
	"alphabench/internal/pricesource"
	"alphabench/internal/signalsource"
	"alphabench/internal/store"
)

// Server exposes backtest execution and run history.
type Server struct {
	prices        pricesource.Source
	defaultSignal signalsource.Source
	runs          *store.SQLiteStore
	log           *slog.Logger
}

// NewServer creates a Server over the given collaborators.
func NewServer(prices pricesource.Source, defaultSignal signalsource.Source, runs *store.SQLiteStore, log *slog.Logger) *Server {
	return &Server{
		prices:        prices,
		defaultSignal: defaultSignal,
		runs:          runs,
		log:           log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BacktestRequest is the POST /api/backtest payload.
type BacktestRequest struct {
	Tickers        []string `json:"tickers"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	InitialCapital float64  `json:"initial_capital"`
	TopK           int      `json:"top_k"`
	RiskFreeDaily  float64  `json:"risk_free_daily"`
	SignalSeed     *int64   `json:"signal_seed,omitempty"` // overrides the server's signal source
}

// StrategyResponse is one strategy's portion of a backtest response.
type StrategyResponse struct {
	Strategy   string         `json:"strategy"`
	FinalValue float64        `json:"final_value"`
	Metrics    metrics.Record `json:"metrics"`
	Values     []ValueJSON    `json:"values"`
}

// ValueJSON is one day of a value series in wire form.
type ValueJSON struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Return float64 `json:"return"`
}

// BacktestResponse is the POST /api/backtest response body.
type BacktestResponse struct {
	Ranked StrategyResponse `json:"ranked"`
	Static StrategyResponse `json:"static"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing start_date: %v", err))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing end_date: %v", err))
		return
	}

	signals := s.defaultSignal
	if req.SignalSeed != nil {
		signals = signalsource.NewRandomSource(*req.SignalSeed)
	}

	// A nil *SQLiteStore must stay a nil interface inside the engine.
	var runs store.RunStore
	if s.runs != nil {
		runs = s.runs
	}

	eng := engine.New(s.prices, signals, runs)
	out, err := eng.Run(r.Context(), engine.Params{
		Tickers:        req.Tickers,
		Start:          start,
		End:            end,
		InitialCapital: req.InitialCapital,
		TopK:           req.TopK,
		RiskFreeDaily:  req.RiskFreeDaily,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, pricesource.ErrDataUnavailable) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, BacktestResponse{
		Ranked: strategyResponse(out.Ranked),
		Static: strategyResponse(out.Static),
	})
}

// RunsResponse is the GET /api/runs response body.
type RunsResponse struct {
	Runs []store.Run `json:"runs"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, RunsResponse{Runs: []store.Run{}})
		return
	}
	runs, err := s.runs.ListRuns(r.Context(), 100)
	if err != nil {
		s.log.Error("listing runs", "error", err)
		writeError(w, http.StatusInternalServerError, "listing runs failed")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, RunsResponse{Runs: runs})
}

func strategyResponse(so engine.StrategyOutcome) StrategyResponse {
	values := make([]ValueJSON, len(so.Result.Values))
	for i, v := range so.Result.Values {
		values[i] = ValueJSON{
			Date:   v.Date.Format("2006-01-02"),
			Value:  v.Value,
			Return: v.Return,
		}
	}
	return StrategyResponse{
		Strategy:   so.Result.Strategy,
		FinalValue: so.Result.FinalValue(),
		Metrics:    so.Metrics,
		Values:     values,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
