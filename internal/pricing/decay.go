// Package pricing estimates short-option values and strikes.
//
// Two models live here:
//   - A theta-decay estimator for the current value of a tracked short
//     option, built on a fixed 32-day opening window and a piecewise
//     decay curve (EstimateOptionPrice).
//   - Black-Scholes machinery (price, delta, delta inversion, ATM implied
//     vol) used by the exact strike suggester and as a cross-check.
//
// Design notes:
//   - All functions are pure; "now" is an explicit parameter so results
//     are deterministic and testable without mocking the clock.
//   - The moneyness branch of the decay model is deliberately directional
//     (underlying above strike is treated as out-of-the-money regardless
//     of side); callers track their positions directionally.
package pricing

import (
	"math"
	"time"

	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/validate"
)

const (
	// openingWindowDays is the assumed span from position open to expiry.
	openingWindowDays = 32

	// fallbackPremiumRate estimates the opening premium as a fraction of
	// strike when the caller did not record the actual credit.
	fallbackPremiumRate = 0.06
)

// Breakdown is the full output of the decay estimator. FinalPrice is the
// headline number; the remaining fields expose each stage of the
// calculation for display and debugging.
type Breakdown struct {
	FinalPrice       float64 `json:"final_price"`
	DaysToExpiration int     `json:"days_to_expiration"`
	DaysSinceOpen    int     `json:"days_since_open"`
	MoneynessPercent float64 `json:"moneyness_percent"`
	DailyBaseTheta   float64 `json:"daily_base_theta"`
	RemainingTheta   float64 `json:"remaining_theta"`
	AdjustedTheta    float64 `json:"adjusted_theta"`
	IntrinsicValue   float64 `json:"intrinsic_value"`
}

// EstimateOptionPrice estimates the current value of a short option from
// its strike, the underlying price, and the expiration date.
//
// Parameters:
//   - strike: option strike price (must be > 0)
//   - underlying: current price of the underlying
//   - expiration: option expiration date
//   - now: evaluation time; day counts are calendar-day ceilings from here
//   - initialPremium: credit received at open; pass 0 to fall back to the
//     6%-of-strike estimate
//
// Returns:
//   - Breakdown: estimated price plus intermediate values
//   - error: invalid (NaN, infinite, non-positive strike) input
//
// The remaining time value is a piecewise-accelerating decay over the
// 32-day window: ×1.05 per day inside 7 days, ×1.65 for days 8-12, ×1.0
// for days 13-22, ×0.30 beyond 22. Moneyness then scales the time value
// (0.6 per 2% bucket out-of-the-money, 0.3 per bucket in-the-money plus
// intrinsic value). Already-expired inputs clamp to zero days.
func EstimateOptionPrice(strike, underlying float64, expiration, now time.Time, initialPremium float64) (Breakdown, error) {
	if err := validate.Positive("strike", strike); err != nil {
		return Breakdown{}, err
	}
	if err := validate.Finite("underlying", underlying); err != nil {
		return Breakdown{}, err
	}
	if err := validate.Finite("initial_premium", initialPremium); err != nil {
		return Breakdown{}, err
	}

	openDate := expiration.AddDate(0, 0, -openingWindowDays)
	dte := daysBetween(now, expiration)
	daysOpen := daysBetween(openDate, now)

	premium := initialPremium
	if premium <= 0 {
		premium = strike * fallbackPremiumRate
	}
	theta := premium / openingWindowDays

	remaining := remainingTimeValue(dte, theta)

	// Moneyness: positive means the underlying sits above the strike.
	moneyness := (underlying - strike) / strike * 100
	buckets := math.Floor(math.Abs(moneyness) / 2)

	adjusted := remaining
	intrinsic := 0.0
	switch {
	case math.Abs(moneyness) <= 0.1:
		// at the money, no adjustment
	case moneyness > 0:
		adjusted *= math.Pow(0.6, buckets)
	default:
		adjusted *= math.Pow(0.3, buckets)
		intrinsic = strike - underlying
	}

	final := math.Round(math.Max(0, adjusted+intrinsic)*100) / 100

	logger.Tracef("event=option_estimate strike=%.2f underlying=%.2f dte=%d price=%.2f",
		strike, underlying, dte, final)

	return Breakdown{
		FinalPrice:       final,
		DaysToExpiration: dte,
		DaysSinceOpen:    daysOpen,
		MoneynessPercent: moneyness,
		DailyBaseTheta:   theta,
		RemainingTheta:   remaining,
		AdjustedTheta:    adjusted,
		IntrinsicValue:   intrinsic,
	}, nil
}

// remainingTimeValue integrates the piecewise decay curve from expiry back
// to dte days out. theta is the flat per-day decay over the opening window.
func remainingTimeValue(dte int, theta float64) float64 {
	d := float64(dte)
	switch {
	case dte <= 7:
		return d * theta * 1.05
	case dte <= 12:
		return 7*theta*1.05 + (d-7)*theta*1.65
	case dte <= 22:
		return 7*theta*1.05 + 5*theta*1.65 + (d-12)*theta
	default:
		return 7*theta*1.05 + 5*theta*1.65 + 10*theta + (d-22)*theta*0.30
	}
}

// daysBetween returns the calendar-day ceiling from a to b, clamped at 0.
func daysBetween(a, b time.Time) int {
	d := int(math.Ceil(b.Sub(a).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}
