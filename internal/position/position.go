// Package position models a tracked short-option position and its roll
// campaign history. Persistence lives outside this module; everything
// here operates on in-memory snapshots.
package position

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/deflationproof/wheelcast/internal/validate"
)

// Side is the direction of a short option position.
type Side string

const (
	SideShortPut  Side = "short_put"
	SideShortCall Side = "short_call"
)

// IsPut reports whether the position is a short put.
func (s Side) IsPut() bool { return s == SideShortPut }

// IsCall reports whether the position is a short call.
func (s Side) IsCall() bool { return s == SideShortCall }

// Snapshot is the point-in-time state the advisor evaluates. It carries
// no identity; the surrounding application owns storage and ids.
type Snapshot struct {
	Symbol             string    `json:"symbol" validate:"required"`
	Side               Side      `json:"side" validate:"required,oneof=short_put short_call"`
	Strike             float64   `json:"strike" validate:"required,gt=0"`
	UnderlyingPrice    float64   `json:"underlying_price" validate:"required,gt=0"`
	Quantity           int       `json:"quantity" validate:"required,gt=0"`
	CreditReceived     float64   `json:"credit_received" validate:"gte=0"`
	Expiration         time.Time `json:"expiration" validate:"required"`
	CurrentOptionPrice float64   `json:"current_option_price" validate:"gte=0"`
}

// structValidator reports field names from json tags so errors match the
// wire format callers submitted.
var structValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks the snapshot for NaN/Inf numerics and structural rules,
// returning a field-level error for the first violation.
func (s Snapshot) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"strike", s.Strike},
		{"underlying_price", s.UnderlyingPrice},
		{"credit_received", s.CreditReceived},
		{"current_option_price", s.CurrentOptionPrice},
	}
	for _, f := range fields {
		if err := validate.Finite(f.name, f.v); err != nil {
			return err
		}
	}
	if err := structValidator.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &validate.FieldError{Field: errs[0].Field(), Reason: "failed rule " + errs[0].Tag()}
		}
		return err
	}
	return nil
}

// ProfitPct is the percentage of the opening credit captured so far:
// (credit − current price) / credit × 100. A zero credit is defined as 0%
// profit rather than a division by zero.
func (s Snapshot) ProfitPct() float64 {
	if s.CreditReceived == 0 {
		return 0
	}
	return (s.CreditReceived - s.CurrentOptionPrice) / s.CreditReceived * 100
}

// PriceChangePct is the underlying's distance from the strike in percent.
func (s Snapshot) PriceChangePct() float64 {
	if s.Strike == 0 {
		return 0
	}
	return (s.UnderlyingPrice - s.Strike) / s.Strike * 100
}

// DaysToExpiration is the calendar-day ceiling from now to expiration.
// Negative values mean the position has already expired.
func (s Snapshot) DaysToExpiration(now time.Time) int {
	return int(math.Ceil(s.Expiration.Sub(now).Hours() / 24))
}

// Shares is the share count the contracts control.
func (s Snapshot) Shares() int { return s.Quantity * 100 }

// Roll documents one roll event in a campaign.
type Roll struct {
	Date          time.Time `json:"date"`
	NewStrike     float64   `json:"new_strike" validate:"required,gt=0"`
	NewPremium    float64   `json:"new_premium" validate:"required,gt=0"`
	NewExpiration time.Time `json:"new_expiration" validate:"required"`
}

// Validate checks a roll event before it is applied.
func (r Roll) Validate() error {
	if err := validate.Positive("new_strike", r.NewStrike); err != nil {
		return err
	}
	if err := validate.Positive("new_premium", r.NewPremium); err != nil {
		return err
	}
	if r.NewExpiration.IsZero() {
		return &validate.FieldError{Field: "new_expiration", Reason: "is required"}
	}
	return nil
}

// Position is a stored snapshot plus its ordered roll history.
type Position struct {
	ID string `json:"id"`
	Snapshot
	Rolls     []Roll    `json:"rolls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyRoll advances the position to the rolled strike, premium, and
// expiration, appending the event to the campaign history.
func (p *Position) ApplyRoll(r Roll) {
	p.Strike = r.NewStrike
	p.CreditReceived = r.NewPremium
	p.Expiration = r.NewExpiration
	p.Rolls = append(p.Rolls, r)
	p.UpdatedAt = r.Date
}

// CampaignSummary is the side-panel arithmetic shown next to the advice:
// the credit collected and the standing set-asides against it.
type CampaignSummary struct {
	TotalCredit   float64 `json:"total_credit"`
	TaxReserve    float64 `json:"tax_reserve"`    // 25% of credit
	SafetyReserve float64 `json:"safety_reserve"` // 5% of credit
	Shares        int     `json:"shares"`
	Rolls         int     `json:"rolls"`
}

// Summarize derives the campaign summary from the current snapshot and
// roll count.
func (p Position) Summarize() CampaignSummary {
	total := p.CreditReceived * float64(p.Quantity)
	return CampaignSummary{
		TotalCredit:   total,
		TaxReserve:    total * 0.25,
		SafetyReserve: total * 0.05,
		Shares:        p.Shares(),
		Rolls:         len(p.Rolls),
	}
}
