package forecast

import (
	"fmt"
	"time"

	"github.com/deflationproof/wheelcast/internal/logger"
)

// ProjectCombined runs independent projections for up to two instruments,
// splitting starting capital and the monthly contribution evenly across
// them.
//
// Each per-instrument series always runs the full horizon; the combined
// freedom month is the first month where the sum of net incomes across
// instruments meets the target. When that never happens inside the
// horizon, Reached is false and FreedomMonth is -1 with all series still
// returned.
func ProjectCombined(in Input, now time.Time) (*CombinedResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	n := len(in.Instruments)
	if n == 0 {
		return nil, ErrNoInstruments
	}
	if n > MaxInstruments {
		return nil, fmt.Errorf("%w: at most %d instruments, got %d", ErrInstrumentCount, MaxInstruments, n)
	}

	capitalEach := in.StartingCapital / float64(n)
	contributionEach := in.MonthlyContribution / float64(n)
	horizon := in.horizon()

	// Survive/thrive thresholds are apportioned the same way the capital
	// is, so each leg is judged against its share of the household target.
	thr := in.Job.Thresholds()
	thr.Survival /= float64(n)
	thr.Thriving /= float64(n)

	logger.Infof("event=project_combined instruments=%d capital_each=%.2f target=%.2f",
		n, capitalEach, in.TargetMonthlyIncome)

	res := &CombinedResult{FreedomMonth: -1}
	for _, inst := range in.Instruments {
		series := projectSeries(inst, capitalEach, contributionEach,
			in.Strategy.Leverage(), now, horizon, 0, false, thr)
		res.Instruments = append(res.Instruments, InstrumentForecast{
			Symbol: inst.Symbol,
			Series: series,
		})
	}

	for m := 0; m < horizon; m++ {
		combined := 0.0
		for _, f := range res.Instruments {
			if m < len(f.Series) {
				combined += f.Series[m].NetIncome
			}
		}
		if combined >= in.TargetMonthlyIncome {
			res.Reached = true
			res.FreedomMonth = m
			res.FreedomDate = FreedomDateFrom(now, m)
			logger.Infof("event=freedom_reached combined=true month=%d net=%.2f", m, combined)
			break
		}
	}
	if !res.Reached {
		logger.Infof("event=freedom_not_reached combined=true horizon=%d", horizon)
	}
	return res, nil
}

// FreedomDateFrom is a convenience for callers that only track the month
// index, mirroring how the wizard derives the displayed date.
func FreedomDateFrom(now time.Time, month int) time.Time {
	return now.AddDate(0, month, 0)
}
