// Package server exposes the calculators over a small REST surface: the
// wizard's forecast endpoints, the option price and strike estimators,
// the price feed, and a per-session position book with advice.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deflationproof/wheelcast/internal/advisor"
	"github.com/deflationproof/wheelcast/internal/prices"
)

// Server wires the calculation packages to HTTP handlers.
type Server struct {
	prices  prices.Provider
	advisor *advisor.Advisor
	book    *Book

	// now is injectable so handler tests are deterministic.
	now func() time.Time
}

// New constructs a server over the given price provider, running the
// built-in advisory rule table.
func New(p prices.Provider) *Server {
	return &Server{
		prices:  p,
		advisor: advisor.New(),
		book:    NewBook(),
		now:     time.Now,
	}
}

// WithClock replaces the server's clock; tests use a fixed time.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// WithRules swaps the advisory rule table.
func (s *Server) WithRules(rules []advisor.Rule) *Server {
	s.advisor = advisor.NewWithRules(rules)
	return s
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/forecast", s.handleForecast)
		r.Post("/forecast/combined", s.handleForecastCombined)
		r.Post("/options/estimate", s.handleEstimate)
		r.Post("/options/strike", s.handleStrike)
		r.Get("/stock-prices", s.handlePrices)

		r.Route("/positions", func(r chi.Router) {
			r.Post("/", s.handleCreatePosition)
			r.Get("/", s.handleListPositions)
			r.Get("/{id}", s.handleGetPosition)
			r.Delete("/{id}", s.handleDeletePosition)
			r.Post("/{id}/rolls", s.handleRoll)
			r.Get("/{id}/advice", s.handleAdvice)
		})
	})

	return r
}

// envelope is the JSON wrapper every endpoint responds with.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: err.Error()})
}
