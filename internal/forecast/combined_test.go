package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deflationproof/wheelcast/internal/testutil"
)

func TestProjectCombinedSplitsCapital(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := Input{
		TargetMonthlyIncome: 1_000_000,
		StartingCapital:     200_000,
		MonthlyContribution: 4000,
		Strategy:            StrategyConservative,
		Instruments: []Instrument{
			{Symbol: "TSLA", Price: 250},
			{Symbol: "NVDA", Price: 500},
		},
	}

	res, err := ProjectCombined(in, now)
	require.NoError(t, err)
	require.Len(t, res.Instruments, 2)

	// Each leg runs on half the capital and half the contribution.
	tsla := res.Instruments[0].Series[0]
	assert.InDelta(t, 100_000*1.25, tsla.BuyingPower, 1e-9)
	assert.Equal(t, 5, tsla.Contracts)
	assert.InDelta(t, 100_000+tsla.NetIncome+2000, tsla.TotalLiquidity, 1e-9)

	nvda := res.Instruments[1].Series[0]
	assert.InDelta(t, 100_000*1.25, nvda.BuyingPower, 1e-9)
	assert.Equal(t, 2, nvda.Contracts)

	// Unreached target: full horizon on both legs, sentinel month.
	assert.False(t, res.Reached)
	assert.Equal(t, -1, res.FreedomMonth)
	assert.Len(t, res.Instruments[0].Series, DefaultHorizonMonths)
	assert.Len(t, res.Instruments[1].Series, DefaultHorizonMonths)
}

func TestProjectCombinedFreedomFromSummedNets(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := Input{
		TargetMonthlyIncome: 15_000,
		StartingCapital:     200_000,
		Strategy:            StrategyConservative,
		Instruments: []Instrument{
			{Symbol: "TSLA", Price: 250},
			{Symbol: "NVDA", Price: 500},
		},
	}

	res, err := ProjectCombined(in, now)
	require.NoError(t, err)
	require.True(t, res.Reached)
	require.GreaterOrEqual(t, res.FreedomMonth, 0)

	sumAt := func(m int) float64 {
		total := 0.0
		for _, f := range res.Instruments {
			total += f.Series[m].NetIncome
		}
		return total
	}
	assert.GreaterOrEqual(t, sumAt(res.FreedomMonth), 15_000.0)
	if res.FreedomMonth > 0 {
		assert.Less(t, sumAt(res.FreedomMonth-1), 15_000.0)
	}
	assert.Equal(t, FreedomDateFrom(now, res.FreedomMonth), res.FreedomDate)
}

func TestProjectCombinedSingleInstrumentMatchesProject(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := Input{
		TargetMonthlyIncome: 1_000_000,
		StartingCapital:     100_000,
		Strategy:            StrategyConservative,
		Instruments:         []Instrument{{Symbol: "TSLA", Price: 250}},
	}

	combined, err := ProjectCombined(in, now)
	require.NoError(t, err)
	single, err := Project(in, now)
	require.NoError(t, err)

	require.Len(t, combined.Instruments, 1)
	require.Len(t, combined.Instruments[0].Series, len(single.Series))
	for m := range single.Series {
		assert.InDelta(t, single.Series[m].NetIncome,
			combined.Instruments[0].Series[m].NetIncome, 1e-9, "month %d", m)
	}
}

func TestProjectCombinedInstrumentBounds(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := Input{StartingCapital: 100_000, Strategy: StrategyConservative}

	_, err := ProjectCombined(in, now)
	assert.ErrorIs(t, err, ErrNoInstruments)

	in.Instruments = []Instrument{
		{Symbol: "TSLA", Price: 250},
		{Symbol: "NVDA", Price: 500},
		{Symbol: "AAPL", Price: 175},
	}
	_, err = ProjectCombined(in, now)
	assert.ErrorIs(t, err, ErrInstrumentCount)
}

func TestProjectCombinedApportionsThresholds(t *testing.T) {
	now := testutil.Date(2025, time.March, 1)
	in := Input{
		Job:                 JobWhiteEntry,
		TargetMonthlyIncome: 1_000_000,
		StartingCapital:     200_000,
		Strategy:            StrategyConservative,
		Instruments: []Instrument{
			{Symbol: "TSLA", Price: 250},
			{Symbol: "NVDA", Price: 500},
		},
	}

	res, err := ProjectCombined(in, now)
	require.NoError(t, err)

	// Each leg nets 5687.50 against its half-share survival line of
	// 3000, so both legs survive from month 0.
	m0 := res.Instruments[0].Series[0]
	assert.True(t, m0.WillSurvive)
	assert.True(t, m0.WillThrive)
}
