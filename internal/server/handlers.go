package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deflationproof/wheelcast/internal/advisor"
	"github.com/deflationproof/wheelcast/internal/forecast"
	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/position"
	"github.com/deflationproof/wheelcast/internal/pricing"
	"github.com/deflationproof/wheelcast/internal/validate"
)

// clientError reports whether err is the caller's fault.
func clientError(err error) bool {
	return errors.Is(err, validate.ErrInvalidInput) ||
		errors.Is(err, forecast.ErrNoInstruments) ||
		errors.Is(err, forecast.ErrInstrumentCount)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrPositionNotFound):
		return http.StatusNotFound
	case clientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", validate.ErrInvalidInput, err)
	}
	return nil
}

//
// Forecast endpoints
//

type forecastRequest struct {
	forecast.Input
	UseLivePrices bool `json:"use_live_prices,omitempty"`
}

// resolvePrices fills missing instrument prices from the provider. A
// symbol the provider cannot quote keeps its zero price, which the
// engine treats as zero contracts.
func (s *Server) resolvePrices(r *http.Request, req *forecastRequest) {
	needed := req.UseLivePrices
	symbols := make([]string, 0, len(req.Instruments))
	for _, inst := range req.Instruments {
		symbols = append(symbols, inst.Symbol)
		if inst.Price <= 0 {
			needed = true
		}
	}
	if !needed || len(symbols) == 0 {
		return
	}
	quotes, err := s.prices.Prices(r.Context(), symbols)
	if err != nil {
		logger.Errorf("event=price_resolution_failed err=%v", err)
		return
	}
	for i := range req.Instruments {
		if req.UseLivePrices || req.Instruments[i].Price <= 0 {
			if v, ok := quotes[req.Instruments[i].Symbol]; ok {
				req.Instruments[i].Price = v
			}
		}
	}
}

// checkWizardBounds enforces the service-boundary rules the engine
// deliberately leaves to callers.
func checkWizardBounds(in forecast.Input) error {
	if in.StartingCapital < forecast.MinimumCapital {
		return &validate.FieldError{
			Field:  "starting_capital",
			Reason: fmt.Sprintf("must be at least $%.0f to meet pattern day trading requirements", forecast.MinimumCapital),
		}
	}
	if in.MonthlyContribution < 0 {
		return &validate.FieldError{Field: "monthly_contribution", Reason: "cannot be negative"}
	}
	return nil
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.resolvePrices(r, &req)
	if err := checkWizardBounds(req.Input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := forecast.Project(req.Input, s.now())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleForecastCombined(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.resolvePrices(r, &req)
	if err := checkWizardBounds(req.Input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := forecast.ProjectCombined(req.Input, s.now())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//
// Estimator endpoints
//

type estimateRequest struct {
	Strike          float64   `json:"strike"`
	UnderlyingPrice float64   `json:"underlying_price"`
	Expiration      time.Time `json:"expiration_date"`
	InitialPremium  float64   `json:"initial_premium,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bd, err := pricing.EstimateOptionPrice(req.Strike, req.UnderlyingPrice, req.Expiration, s.now(), req.InitialPremium)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

type strikeRequest struct {
	UnderlyingPrice  float64 `json:"underlying_price"`
	DesiredDelta     float64 `json:"desired_delta"`
	DaysToExpiration int     `json:"days_to_expiration"`
	IsCall           bool    `json:"is_call,omitempty"`
	ImpliedVol       float64 `json:"implied_volatility,omitempty"`
	Model            string  `json:"model,omitempty"` // "rule16" (default) or "bs"

	// Optional ATM quotes for the bs model; when present the implied
	// vol is derived from them instead of taken from ImpliedVol.
	ATMStrike float64 `json:"atm_strike,omitempty"`
	CallPrice float64 `json:"call_price,omitempty"`
	PutPrice  float64 `json:"put_price,omitempty"`
}

type strikeResponse struct {
	Strike float64 `json:"strike"`
	Model  string  `json:"model"`
}

func (s *Server) handleStrike(w http.ResponseWriter, r *http.Request) {
	var req strikeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		strike float64
		err    error
		model  = req.Model
	)
	switch model {
	case "", "rule16":
		model = "rule16"
		strike, err = pricing.SuggestStrike(req.UnderlyingPrice, req.DesiredDelta,
			req.DaysToExpiration, req.IsCall, req.ImpliedVol)
	case "bs":
		if req.ATMStrike > 0 && req.CallPrice > 0 && req.PutPrice > 0 {
			strike, err = pricing.SuggestStrikeFromQuotes(req.UnderlyingPrice, req.DesiredDelta,
				req.DaysToExpiration, req.IsCall, req.ATMStrike, req.CallPrice, req.PutPrice)
		} else {
			strike, err = pricing.SuggestStrikeExact(req.UnderlyingPrice, req.DesiredDelta,
				req.DaysToExpiration, req.IsCall, req.ImpliedVol/100)
		}
	default:
		writeError(w, http.StatusBadRequest,
			&validate.FieldError{Field: "model", Reason: "must be rule16 or bs"})
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, strikeResponse{Strike: strike, Model: model})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.prices.Prices(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prices": quotes})
}

//
// Position endpoints
//

func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var snap position.Snapshot
	if err := decode(r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := snap.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p := s.book.Create(snap, s.now())
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.book.List())
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := s.book.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	s.book.Delete(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var roll position.Roll
	if err := decode(r, &roll); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if roll.Date.IsZero() {
		roll.Date = s.now()
	}
	if err := roll.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := s.book.ApplyRoll(chi.URLParam(r, "id"), roll)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// adviceResponse pairs the advisory output with the campaign summary the
// position screen renders next to it.
type adviceResponse struct {
	Advice  advisor.Advice           `json:"advice"`
	Summary position.CampaignSummary `json:"summary"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	p, err := s.book.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	adv, err := s.advisor.Advise(p.Snapshot, s.now())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: adv, Summary: p.Summarize()})
}
