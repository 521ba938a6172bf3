package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlackScholesPutCallParity(t *testing.T) {
	const (
		spot   = 100.0
		strike = 95.0
		years  = 0.25
		rate   = 0.02
		sigma  = 0.30
	)
	call := BlackScholesPrice(true, spot, strike, years, rate, sigma)
	put := BlackScholesPrice(false, spot, strike, years, rate, sigma)

	parity := spot - strike*math.Exp(-rate*years)
	assert.InDelta(t, parity, call-put, 1e-9)
}

func TestBlackScholesIntrinsicBounds(t *testing.T) {
	// Option value never drops below intrinsic and calls exceed puts deep
	// in the money.
	call := BlackScholesPrice(true, 120, 100, 0.1, 0.02, 0.25)
	assert.Greater(t, call, 20.0)

	put := BlackScholesPrice(false, 80, 100, 0.1, 0.02, 0.25)
	assert.Greater(t, put, 19.0)
}

func TestDeltaSigns(t *testing.T) {
	callDelta := Delta(true, 100, 100, 0.1, 0.02, 0.30)
	putDelta := Delta(false, 100, 100, 0.1, 0.02, 0.30)

	assert.Greater(t, callDelta, 0.0)
	assert.Less(t, putDelta, 0.0)
	// ATM deltas straddle ±0.5
	assert.InDelta(t, 0.5, callDelta, 0.05)
	assert.InDelta(t, -0.5, putDelta, 0.05)
	// call and put delta at the same strike differ by exactly 1
	assert.InDelta(t, 1.0, callDelta-putDelta, 1e-12)
}

func TestStrikeFromDeltaRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		isCall bool
		delta  float64
	}{
		{"30-delta put", false, 0.30},
		{"20-delta put", false, 0.20},
		{"30-delta call", true, 0.30},
		{"45-delta call", true, 0.45},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			strike, err := StrikeFromDelta(tc.isCall, 250, tc.delta, 45.0/365, 0.02, 0.35)
			require.NoError(t, err)

			got := Delta(tc.isCall, 250, strike, 45.0/365, 0.02, 0.35)
			assert.InDelta(t, tc.delta, math.Abs(got), 1e-6)

			// sanity: puts land below spot, calls above, for sub-50 deltas
			if tc.delta < 0.5 {
				if tc.isCall {
					assert.Greater(t, strike, 250.0)
				} else {
					assert.Less(t, strike, 250.0)
				}
			}
		})
	}
}

func TestStrikeFromDeltaRejectsBadInput(t *testing.T) {
	_, err := StrikeFromDelta(false, 100, 0, 0.1, 0.02, 0.30)
	assert.Error(t, err)
	_, err = StrikeFromDelta(false, 100, 1.2, 0.1, 0.02, 0.30)
	assert.Error(t, err)
	_, err = StrikeFromDelta(false, 100, 0.3, 0, 0.02, 0.30)
	assert.Error(t, err)
	_, err = StrikeFromDelta(false, 100, 0.3, 0.1, 0.02, 0)
	assert.Error(t, err)
}

func TestImpliedVolATMRecoversSigma(t *testing.T) {
	const (
		spot  = 100.0
		years = 30.0 / 365
		rate  = 0.02
		sigma = 0.42
	)
	call := BlackScholesPrice(true, spot, spot, years, rate, sigma)
	put := BlackScholesPrice(false, spot, spot, years, rate, sigma)

	// The solver targets the straddle midpoint, so a nonzero rate skews
	// the recovered vol slightly below the input.
	iv, err := ImpliedVolATM(spot, spot, years, rate, call, put)
	require.NoError(t, err)
	assert.InDelta(t, sigma, iv, 0.01)
}

func TestImpliedVolATMRejectsZeroExpiry(t *testing.T) {
	_, err := ImpliedVolATM(100, 100, 0, 0.02, 3, 3)
	assert.Error(t, err)
}

func TestNormInvInvertsCDF(t *testing.T) {
	for _, p := range []float64{0.05, 0.20, 0.30, 0.50, 0.70, 0.95} {
		x := NormInv(p)
		assert.InDelta(t, p, normCDF(x), 1e-8, "p=%v", p)
	}
}
