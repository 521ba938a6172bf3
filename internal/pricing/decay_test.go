package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deflationproof/wheelcast/internal/testutil"
	"github.com/deflationproof/wheelcast/internal/validate"
)

func TestEstimateFullWindowATM(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	exp := testutil.DaysFrom(now, 32)

	bd, err := EstimateOptionPrice(100, 100, exp, now, 3.20)
	require.NoError(t, err)

	// Theta is credit/32; integrating the decay curve over the whole
	// window yields 28.6 theta units: 7*1.05 + 5*1.65 + 10*1.0 + 10*0.30.
	theta := 3.20 / 32
	assert.Equal(t, 32, bd.DaysToExpiration)
	assert.Equal(t, 0, bd.DaysSinceOpen)
	assert.InDelta(t, theta, bd.DailyBaseTheta, 1e-12)
	assert.InDelta(t, 28.6*theta, bd.RemainingTheta, 1e-9)
	assert.InDelta(t, 0, bd.MoneynessPercent, 1e-12)
	assert.InDelta(t, 28.6*theta, bd.AdjustedTheta, 1e-9)
	assert.InDelta(t, 0, bd.IntrinsicValue, 1e-12)
	assert.InDelta(t, 2.86, bd.FinalPrice, 0.005)
}

func TestEstimateDecayBuckets(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	theta := 3.20 / 32

	tests := []struct {
		name string
		dte  int
		want float64
	}{
		{"expiration day", 0, 0},
		{"inside final week", 5, 5 * 1.05 * theta},
		{"cliff band", 10, (7*1.05 + 3*1.65) * theta},
		{"flat band", 20, (7*1.05 + 5*1.65 + 8) * theta},
		{"slow band", 30, (7*1.05 + 5*1.65 + 10 + 8*0.30) * theta},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bd, err := EstimateOptionPrice(100, 100, testutil.DaysFrom(now, tc.dte), now, 3.20)
			require.NoError(t, err)
			assert.Equal(t, tc.dte, bd.DaysToExpiration)
			assert.InDelta(t, tc.want, bd.RemainingTheta, 1e-9)
		})
	}
}

func TestEstimateMoneynessAdjustment(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	exp := testutil.DaysFrom(now, 32)
	remaining := 28.6 * 3.20 / 32

	t.Run("out of the money", func(t *testing.T) {
		// 5% above strike lands in the second 2%-bucket: time value
		// compresses by 0.6^2 with no intrinsic component.
		bd, err := EstimateOptionPrice(100, 105, exp, now, 3.20)
		require.NoError(t, err)
		assert.InDelta(t, 5, bd.MoneynessPercent, 1e-9)
		assert.InDelta(t, remaining*0.36, bd.AdjustedTheta, 1e-9)
		assert.InDelta(t, 0, bd.IntrinsicValue, 1e-12)
	})

	t.Run("in the money", func(t *testing.T) {
		// 5% below strike: time value compresses by 0.3^2 and intrinsic
		// value strike-underlying is added.
		bd, err := EstimateOptionPrice(100, 95, exp, now, 3.20)
		require.NoError(t, err)
		assert.InDelta(t, -5, bd.MoneynessPercent, 1e-9)
		assert.InDelta(t, remaining*0.09, bd.AdjustedTheta, 1e-9)
		assert.InDelta(t, 5, bd.IntrinsicValue, 1e-9)
		assert.InDelta(t, 5+remaining*0.09, bd.FinalPrice, 0.005)
	})

	t.Run("near the money band", func(t *testing.T) {
		bd, err := EstimateOptionPrice(100, 100.05, exp, now, 3.20)
		require.NoError(t, err)
		assert.InDelta(t, remaining, bd.AdjustedTheta, 1e-9)
	})
}

func TestEstimatePremiumFallback(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	exp := testutil.DaysFrom(now, 32)

	bd, err := EstimateOptionPrice(250, 250, exp, now, 0)
	require.NoError(t, err)
	assert.InDelta(t, 250*0.06/32, bd.DailyBaseTheta, 1e-9)
}

func TestEstimateExpiredClampsToZeroDays(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	exp := testutil.DaysFrom(now, -3)

	bd, err := EstimateOptionPrice(100, 95, exp, now, 3.20)
	require.NoError(t, err)
	assert.Equal(t, 0, bd.DaysToExpiration)
	assert.InDelta(t, 0, bd.RemainingTheta, 1e-12)
	// Only the intrinsic component survives expiry.
	assert.InDelta(t, 5, bd.FinalPrice, 0.005)
}

func TestEstimateRejectsBadInput(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	exp := testutil.DaysFrom(now, 10)

	tests := []struct {
		name       string
		strike     float64
		underlying float64
		premium    float64
		field      string
	}{
		{"zero strike", 0, 100, 3, "strike"},
		{"negative strike", -5, 100, 3, "strike"},
		{"nan strike", math.NaN(), 100, 3, "strike"},
		{"nan underlying", 100, math.NaN(), 3, "underlying"},
		{"inf premium", 100, 100, math.Inf(1), "initial_premium"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EstimateOptionPrice(tc.strike, tc.underlying, exp, now, tc.premium)
			require.Error(t, err)
			assert.True(t, errors.Is(err, validate.ErrInvalidInput))

			var fe *validate.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestEstimateNeverNegative(t *testing.T) {
	now := testutil.Date(2026, 3, 2)
	bd, err := EstimateOptionPrice(100, 180, testutil.DaysFrom(now, 3), now, 0.05)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bd.FinalPrice, 0.0)
}
