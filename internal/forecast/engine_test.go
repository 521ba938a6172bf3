package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deflationproof/wheelcast/internal/testutil"
	"github.com/deflationproof/wheelcast/internal/validate"
)

func baseInput() Input {
	return Input{
		TargetMonthlyIncome: 1_000_000, // unreachable, full horizon
		StartingCapital:     100_000,
		Strategy:            StrategyConservative,
		Instruments:         []Instrument{{Symbol: "TSLA", Price: 250}},
	}
}

func TestProjectFirstMonthArithmetic(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	res, err := Project(baseInput(), now)
	require.NoError(t, err)

	m0 := res.Series[0]

	// 100k at 1.25x leverage buys 5 contracts at $250.
	assert.InDelta(t, 125_000, m0.BuyingPower, 1e-9)
	assert.Equal(t, 5, m0.Contracts)

	// gross = contracts * price * 100 * 7%
	assert.InDelta(t, 8750, m0.GrossIncome, 1e-9)
	assert.InDelta(t, 8750*0.25, m0.TaxReserve, 1e-9)
	assert.InDelta(t, 8750*0.10, m0.StrategicReserve, 1e-9)
	assert.InDelta(t, 8750*0.65, m0.NetIncome, 1e-9)
	assert.InDelta(t, 100_000+8750*0.65, m0.TotalLiquidity, 1e-9)
}

func TestProjectIncomeDecomposition(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	res, err := Project(baseInput(), now)
	require.NoError(t, err)

	for _, p := range res.Series {
		assert.InDelta(t, p.GrossIncome, p.TaxReserve+p.StrategicReserve+p.NetIncome, 1e-6,
			"month %d", p.Month)
		assert.LessOrEqual(t, float64(p.Contracts)*250*100, p.BuyingPower+1e-6,
			"month %d", p.Month)
	}
}

func TestProjectLiquidityRecurrence(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.MonthlyContribution = 2000

	res, err := Project(in, now)
	require.NoError(t, err)
	require.Greater(t, len(res.Series), 2)

	for m := 1; m < len(res.Series); m++ {
		prev, cur := res.Series[m-1], res.Series[m]
		assert.InDelta(t, prev.TotalLiquidity+cur.NetIncome+2000, cur.TotalLiquidity, 1e-6,
			"month %d", m)
		assert.InDelta(t, prev.TotalLiquidity*1.25, cur.BuyingPower, 1e-6, "month %d", m)
		assert.GreaterOrEqual(t, cur.TotalLiquidity, prev.TotalLiquidity)
	}
}

func TestProjectStopsAtTarget(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.TargetMonthlyIncome = 0

	res, err := Project(in, now)
	require.NoError(t, err)

	// A zero target is reached immediately: one month, freedom at 0.
	assert.True(t, res.Reached)
	assert.Equal(t, 0, res.FreedomMonth)
	assert.Len(t, res.Series, 1)
	assert.Equal(t, now, res.FreedomDate)
	assert.InDelta(t, res.Series[0].NetIncome, res.NetIncomeAtFreedom, 1e-9)
	assert.InDelta(t, res.Series[0].TotalLiquidity, res.LiquidityAtFreedom, 1e-9)
}

func TestProjectReachesModestTarget(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.TargetMonthlyIncome = 9000

	res, err := Project(in, now)
	require.NoError(t, err)
	require.True(t, res.Reached)

	last := res.Series[len(res.Series)-1]
	assert.Equal(t, last.Month, res.FreedomMonth)
	assert.GreaterOrEqual(t, last.NetIncome, 9000.0)
	// every prior month fell short
	for _, p := range res.Series[:len(res.Series)-1] {
		assert.Less(t, p.NetIncome, 9000.0, "month %d", p.Month)
	}
}

func TestProjectHorizonCapAndSentinel(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	res, err := Project(baseInput(), now)
	require.NoError(t, err)

	assert.False(t, res.Reached)
	assert.Equal(t, -1, res.FreedomMonth)
	assert.Len(t, res.Series, DefaultHorizonMonths)
	assert.True(t, res.FreedomDate.IsZero())
}

func TestProjectJanuaryTaxFundReset(t *testing.T) {
	now := testutil.Date(2025, time.December, 1)
	res, err := Project(baseInput(), now)
	require.NoError(t, err)
	require.Greater(t, len(res.Series), 13)

	dec, jan := res.Series[0], res.Series[1]
	require.Equal(t, time.January, jan.Date.Month())

	// December's fund holds its own tax; January restarts from zero.
	assert.InDelta(t, dec.TaxReserve, dec.YearTaxFund, 1e-9)
	assert.InDelta(t, jan.TaxReserve, jan.YearTaxFund, 1e-9)

	// The fund then accumulates through the year until the next reset.
	feb := res.Series[2]
	assert.InDelta(t, jan.YearTaxFund+feb.TaxReserve, feb.YearTaxFund, 1e-6)
	nextJan := res.Series[13]
	require.Equal(t, time.January, nextJan.Date.Month())
	assert.InDelta(t, nextJan.TaxReserve, nextJan.YearTaxFund, 1e-6)
}

func TestProjectHighVolInstrument(t *testing.T) {
	assert.InDelta(t, 0.09, PremiumRate("MSTR"), 1e-12)
	assert.InDelta(t, 0.15, ReserveRate("MSTR"), 1e-12)
	assert.InDelta(t, 0.07, PremiumRate("TSLA"), 1e-12)
	assert.InDelta(t, 0.10, ReserveRate("TSLA"), 1e-12)

	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.Instruments = []Instrument{{Symbol: "MSTR", Price: 1000}}

	res, err := Project(in, now)
	require.NoError(t, err)

	m0 := res.Series[0]
	// 1 contract at $1000: gross at the 9% curve, 60% kept after the
	// 25% tax and 15% reserve.
	assert.Equal(t, 1, m0.Contracts)
	assert.InDelta(t, 1000*100*0.09, m0.GrossIncome, 1e-9)
	assert.InDelta(t, m0.GrossIncome*0.60, m0.NetIncome, 1e-9)
}

func TestProjectAggressiveLeverage(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.Strategy = StrategyAggressive

	res, err := Project(in, now)
	require.NoError(t, err)
	assert.InDelta(t, 150_000, res.Series[0].BuyingPower, 1e-9)

	// Unknown strategy strings fall back to conservative.
	in.Strategy = Strategy("yolo")
	res, err = Project(in, now)
	require.NoError(t, err)
	assert.InDelta(t, 125_000, res.Series[0].BuyingPower, 1e-9)
}

func TestProjectZeroContractsWhenUnderfunded(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.StartingCapital = 10_000 // 12.5k buying power, one contract needs 25k

	res, err := Project(in, now)
	require.NoError(t, err)

	m0 := res.Series[0]
	assert.Equal(t, 0, m0.Contracts)
	assert.InDelta(t, 0, m0.GrossIncome, 1e-12)
	assert.InDelta(t, in.StartingCapital, m0.TotalLiquidity, 1e-9)
}

func TestProjectJobAnnotations(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := baseInput()
	in.Job = JobWhiteEntry

	res, err := Project(in, now)
	require.NoError(t, err)

	// Month 0 nets 5687.50, short of the 6000 survival line.
	m0 := res.Series[0]
	assert.False(t, m0.WillSurvive)
	assert.False(t, m0.WillThrive)
	assert.InDelta(t, (6000-5687.5)/(0.07*0.65), m0.CapitalForSurvival, 1e-6)
	assert.Greater(t, m0.CapitalForThriving, m0.CapitalForSurvival)

	// Eventually the compounding series crosses both lines.
	last := res.Series[len(res.Series)-1]
	assert.True(t, last.WillSurvive)
	assert.True(t, last.WillThrive)
	assert.InDelta(t, 0, last.CapitalForSurvival, 1e-12)
}

func TestProjectValidation(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)

	t.Run("nan capital", func(t *testing.T) {
		in := baseInput()
		in.StartingCapital = math.NaN()
		_, err := Project(in, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, validate.ErrInvalidInput))

		var fe *validate.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "starting_capital", fe.Field)
	})

	t.Run("inf instrument price", func(t *testing.T) {
		in := baseInput()
		in.Instruments[0].Price = math.Inf(1)
		_, err := Project(in, now)
		require.Error(t, err)

		var fe *validate.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "instruments[0].price", fe.Field)
	})

	t.Run("no instruments", func(t *testing.T) {
		in := baseInput()
		in.Instruments = nil
		_, err := Project(in, now)
		assert.True(t, errors.Is(err, ErrNoInstruments))
	})

	t.Run("too many instruments", func(t *testing.T) {
		in := baseInput()
		in.Instruments = append(in.Instruments, Instrument{Symbol: "NVDA", Price: 800})
		_, err := Project(in, now)
		assert.True(t, errors.Is(err, ErrInstrumentCount))
	})
}

func TestJobThresholds(t *testing.T) {
	thr := JobWhiteEntry.Thresholds()
	assert.InDelta(t, 6000, thr.Survival, 1e-12)
	assert.InDelta(t, 9000, thr.Thriving, 1e-12)

	assert.True(t, JobBlueTrucker.Known())
	assert.False(t, JobType("astronaut").Known())
	assert.Zero(t, JobType("astronaut").Thresholds().Survival)
}
