package pricing

import (
	"fmt"
	"math"
)

const sqrt2Pi = 2.5066282746310002

// BlackScholesPrice calculates the price of a European option using the
// Black-Scholes model.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - spot: spot price of the underlying asset
//   - strike: strike price of the option
//   - years: time to expiry in years
//   - rate: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility is
//	zero or negative, returns the intrinsic value of the option.
func BlackScholesPrice(isCall bool, spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 || sigma <= 0 {
		// intrinsic fallback
		if isCall {
			return math.Max(0, spot-strike)
		}
		return math.Max(0, strike-spot)
	}

	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*years) / (sigma * math.Sqrt(years))
	d2 := d1 - sigma*math.Sqrt(years)

	if isCall {
		return spot*normCDF(d1) - strike*math.Exp(-rate*years)*normCDF(d2)
	}
	return strike*math.Exp(-rate*years)*normCDF(-d2) - spot*normCDF(-d1)
}

// Delta calculates the Black-Scholes delta of a European option.
//
// Returns a value in (0, 1) for calls and (-1, 0) for puts. Expired or
// zero-volatility inputs collapse to 0 or ±1 depending on moneyness.
func Delta(isCall bool, spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 || sigma <= 0 {
		switch {
		case isCall && spot > strike:
			return 1
		case !isCall && spot < strike:
			return -1
		default:
			return 0
		}
	}
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*years) / (sigma * math.Sqrt(years))
	if isCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// StrikeFromDelta inverts the Black-Scholes delta: it returns the strike
// whose delta equals the target, given spot, rate, volatility and expiry.
//
// Parameters:
//   - isCall: option side; targetDelta is interpreted as an absolute value
//   - spot: spot price of the underlying
//   - targetDelta: desired |delta| in (0, 1), e.g. 0.30
//   - years: time to expiry in years
//   - rate: risk-free interest rate (annual)
//   - sigma: volatility (annual, as a decimal)
//
// Returns:
//   - float64: the strike solving delta(strike) == targetDelta
//   - error: if targetDelta is outside (0, 1) or expiry/volatility invalid
func StrikeFromDelta(isCall bool, spot, targetDelta, years, rate, sigma float64) (float64, error) {
	if targetDelta <= 0 || targetDelta >= 1 {
		return 0, fmt.Errorf("target delta %.4f outside (0,1)", targetDelta)
	}
	if years <= 0 || sigma <= 0 {
		return 0, fmt.Errorf("invalid expiry or volatility")
	}

	// delta_call = N(d1)  =>  d1 = NormInv(delta)
	// delta_put  = N(d1) - 1, |delta_put| = N(-d1)  =>  d1 = -NormInv(|delta|)
	d1 := NormInv(targetDelta)
	if !isCall {
		d1 = -d1
	}

	// d1 = (ln(S/K) + (r + sigma^2/2) T) / (sigma sqrt(T))  solved for K.
	lnSK := d1*sigma*math.Sqrt(years) - (rate+0.5*sigma*sigma)*years
	return spot * math.Exp(-lnSK), nil
}

// ImpliedVolATM calculates the implied volatility at-the-money using the
// Newton-Raphson method.
//
// It takes the underlying price, at-the-money strike, time to expiry in
// years, risk-free rate, and both call and put prices at that strike, then
// iteratively solves for the volatility that makes the Black-Scholes price
// match the market price (average of call and put prices).
//
// Returns the implied volatility or an error if convergence fails or
// inputs are invalid.
func ImpliedVolATM(spot, strike, years, rate, callPrice, putPrice float64) (float64, error) {
	if years <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}

	marketPrice := (callPrice + putPrice) / 2

	// Initial guess: 20%
	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		price := BlackScholesPrice(true, spot, strike, years, rate, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := vega(spot, strike, years, rate, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}

// vega is the Black-Scholes sensitivity of price to volatility, used by the
// Newton-Raphson implied-vol solver.
func vega(spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 || sigma <= 0 {
		return 0
	}
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*years) / (sigma * math.Sqrt(years))
	return spot * normPDF(d1) * math.Sqrt(years)
}

// normPDF is the probability density of the standard normal distribution.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF is the cumulative distribution of the standard normal
// distribution, via the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// NormInv computes the inverse of the standard normal cumulative
// distribution function (quantile function): the x such that the
// cumulative probability at x equals p.
//
// Uses a rational approximation (Acklam/Wichura style) accurate across the
// full range of valid probabilities.
//
// Panics if p is not strictly between 0 and 1.
func NormInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		panic("NormInv: p must be in (0,1)")
	}

	// Coefficients
	a := []float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}

	b := []float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}

	c := []float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}

	d := []float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}

	plow := 0.02425
	phigh := 1 - plow

	var q, r float64

	if p < plow {
		q = math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}

	if p > phigh {
		q = math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}

	q = p - 0.5
	r = q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
}
