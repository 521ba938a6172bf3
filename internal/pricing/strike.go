package pricing

import (
	"math"

	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/validate"
)

const (
	// defaultImpliedVol is assumed when the caller has no market IV.
	defaultImpliedVol = 30.0

	// defaultRiskFreeRate feeds the Black-Scholes strike suggester.
	defaultRiskFreeRate = 0.02

	// strikeIncrement is the listing grid strikes are rounded up to.
	strikeIncrement = 5.0
)

// SuggestStrike estimates the strike corresponding to a target option
// delta using the rule-of-16 approximation.
//
// Parameters:
//   - underlying: current price of the underlying (must be > 0)
//   - desiredDelta: target delta in delta points, e.g. 30 for 30-delta
//   - daysToExpiration: calendar days to expiry; negative clamps to 0
//   - isCall: side; calls land above spot, puts below
//   - impliedVol: annualized IV in percent; pass 0 to assume 30
//
// Returns:
//   - float64: suggested strike, rounded up to the next $5 increment
//   - error: invalid (NaN, infinite, non-positive) input
//
// The base distance is percentOTM = 16 × sqrt(DTE) / delta, then scaled
// for the IV regime (×1.2 above 60, ×1.1 above 40, ×0.9 below 20) and the
// time bucket (×0.7 under 7 DTE, ×0.85 under 14, ×1.3 over 45).
func SuggestStrike(underlying, desiredDelta float64, daysToExpiration int, isCall bool, impliedVol float64) (float64, error) {
	if err := validate.Positive("underlying", underlying); err != nil {
		return 0, err
	}
	if err := validate.Positive("desired_delta", desiredDelta); err != nil {
		return 0, err
	}
	if err := validate.Finite("implied_volatility", impliedVol); err != nil {
		return 0, err
	}
	if impliedVol <= 0 {
		impliedVol = defaultImpliedVol
	}
	if daysToExpiration < 0 {
		daysToExpiration = 0
	}

	percentOTM := 16 * math.Sqrt(float64(daysToExpiration)) / desiredDelta

	// IV regime adjustment
	switch {
	case impliedVol > 60:
		percentOTM *= 1.2
	case impliedVol > 40:
		percentOTM *= 1.1
	case impliedVol < 20:
		percentOTM *= 0.9
	}

	// Time-bucket adjustment
	switch {
	case daysToExpiration < 7:
		percentOTM *= 0.7
	case daysToExpiration < 14:
		percentOTM *= 0.85
	case daysToExpiration > 45:
		percentOTM *= 1.3
	}

	frac := percentOTM / 100
	strike := underlying * (1 - frac)
	if isCall {
		strike = underlying * (1 + frac)
	}
	strike = roundUpToIncrement(strike)

	logger.Debugf("event=strike_suggested model=rule16 underlying=%.2f delta=%.1f dte=%d strike=%.2f",
		underlying, desiredDelta, daysToExpiration, strike)
	return strike, nil
}

// SuggestStrikeExact inverts the Black-Scholes delta for callers who know
// the market implied volatility. desiredDelta is in delta points and sigma
// is a decimal (0.30 for 30%).
//
// Returns the strike rounded up to the next $5 increment, on the same grid
// as SuggestStrike so the two models are directly comparable.
func SuggestStrikeExact(underlying, desiredDelta float64, daysToExpiration int, isCall bool, sigma float64) (float64, error) {
	if err := validate.Positive("underlying", underlying); err != nil {
		return 0, err
	}
	years := float64(daysToExpiration) / 365
	strike, err := StrikeFromDelta(isCall, underlying, desiredDelta/100, years, defaultRiskFreeRate, sigma)
	if err != nil {
		return 0, err
	}
	strike = roundUpToIncrement(strike)
	logger.Debugf("event=strike_suggested model=bs underlying=%.2f delta=%.1f dte=%d strike=%.2f",
		underlying, desiredDelta, daysToExpiration, strike)
	return strike, nil
}

// SuggestStrikeFromQuotes derives the implied volatility from observed
// at-the-money call/put quotes, then delegates to SuggestStrikeExact.
func SuggestStrikeFromQuotes(underlying, desiredDelta float64, daysToExpiration int, isCall bool, atmStrike, callPrice, putPrice float64) (float64, error) {
	years := float64(daysToExpiration) / 365
	iv, err := ImpliedVolATM(underlying, atmStrike, years, defaultRiskFreeRate, callPrice, putPrice)
	if err != nil {
		return 0, err
	}
	logger.Tracef("event=iv_estimated iv=%.4f dte=%d", iv, daysToExpiration)
	return SuggestStrikeExact(underlying, desiredDelta, daysToExpiration, isCall, iv)
}

// roundUpToIncrement rounds a raw strike up to the listing grid.
func roundUpToIncrement(strike float64) float64 {
	return math.Ceil(strike/strikeIncrement) * strikeIncrement
}
