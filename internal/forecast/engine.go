package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/validate"
)

// Fixed deduction rates applied to every month's premium income.
const (
	// TaxRate is set aside from gross premium for taxes.
	TaxRate = 0.25

	// Standard premium yield and strategic-reserve rates, with higher
	// values for the designated high-volatility instrument.
	defaultPremiumRate = 0.07
	defaultReserveRate = 0.10
	highVolPremiumRate = 0.09
	highVolReserveRate = 0.15
)

// highVolSymbols marks instruments priced on the richer premium curve and
// the thicker strategic reserve.
var highVolSymbols = map[string]bool{
	"MSTR": true,
}

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	ErrNoInstruments   = errors.New("no instruments selected")
	ErrInstrumentCount = errors.New("unsupported instrument count")
)

// PremiumRate returns the monthly premium yield assumed for a symbol.
func PremiumRate(symbol string) float64 {
	if highVolSymbols[symbol] {
		return highVolPremiumRate
	}
	return defaultPremiumRate
}

// ReserveRate returns the strategic-reserve rate for a symbol.
func ReserveRate(symbol string) float64 {
	if highVolSymbols[symbol] {
		return highVolReserveRate
	}
	return defaultReserveRate
}

// Project runs the single-instrument projection.
//
// Parameters:
//   - in: run configuration; must select exactly one instrument
//   - now: month-0 anchor; January resets of the year tax fund are
//     computed from this date
//
// Returns:
//   - *Result: the monthly series, terminated early the first month net
//     income reaches the target, else capped at the horizon with
//     Reached=false
//   - error: NaN/Inf input or a wrong instrument count
func Project(in Input, now time.Time) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(in.Instruments) != 1 {
		if len(in.Instruments) == 0 {
			return nil, ErrNoInstruments
		}
		return nil, fmt.Errorf("%w: Project takes one instrument, got %d (use ProjectCombined)",
			ErrInstrumentCount, len(in.Instruments))
	}

	inst := in.Instruments[0]
	logger.Infof("event=project symbol=%s capital=%.2f target=%.2f strategy=%s",
		inst.Symbol, in.StartingCapital, in.TargetMonthlyIncome, in.Strategy)

	series := projectSeries(inst, in.StartingCapital, in.MonthlyContribution,
		in.Strategy.Leverage(), now, in.horizon(), in.TargetMonthlyIncome, true, in.Job.Thresholds())

	res := &Result{
		Symbol:       inst.Symbol,
		FreedomMonth: -1,
		Series:       series,
	}
	last := series[len(series)-1]
	if last.NetIncome >= in.TargetMonthlyIncome {
		res.Reached = true
		res.FreedomMonth = last.Month
		res.FreedomDate = last.Date
		res.NetIncomeAtFreedom = last.NetIncome
		res.LiquidityAtFreedom = last.TotalLiquidity
		res.ReserveAtFreedom = last.StrategicReserve
		logger.Infof("event=freedom_reached symbol=%s month=%d net=%.2f",
			inst.Symbol, res.FreedomMonth, res.NetIncomeAtFreedom)
	} else {
		logger.Infof("event=freedom_not_reached symbol=%s horizon=%d", inst.Symbol, in.horizon())
	}
	return res, nil
}

// Validate rejects NaN or infinite numeric input, naming the offending
// field. Zero and negative values pass; the projection defines degenerate
// output for them.
func (in Input) Validate() error {
	if err := validate.Finite("target_monthly_income", in.TargetMonthlyIncome); err != nil {
		return err
	}
	if err := validate.Finite("starting_capital", in.StartingCapital); err != nil {
		return err
	}
	if err := validate.Finite("monthly_contribution", in.MonthlyContribution); err != nil {
		return err
	}
	for i, inst := range in.Instruments {
		if err := validate.Finite(fmt.Sprintf("instruments[%d].price", i), inst.Price); err != nil {
			return err
		}
	}
	return nil
}

// projectSeries is the shared monthly loop. It runs at most horizon
// months; with stopEarly it returns as soon as net income reaches target.
func projectSeries(inst Instrument, capital, contribution, leverage float64,
	now time.Time, horizon int, target float64, stopEarly bool, thr JobThresholds) []MonthlyProjection {

	series := make([]MonthlyProjection, 0, horizon)
	liquidity := capital
	taxFund := 0.0

	for m := 0; m < horizon; m++ {
		date := now.AddDate(0, m, 0)

		// The year tax fund resets each simulated January.
		if date.Month() == time.January && m > 0 {
			taxFund = 0
		}

		p := projectMonth(inst, liquidity, leverage, contribution, m, date, taxFund, thr)
		taxFund = p.YearTaxFund
		series = append(series, p)
		liquidity = p.TotalLiquidity

		logger.Tracef("event=month symbol=%s m=%d contracts=%d gross=%.2f net=%.2f liquidity=%.2f",
			inst.Symbol, m, p.Contracts, p.GrossIncome, p.NetIncome, p.TotalLiquidity)

		if stopEarly && p.NetIncome >= target {
			break
		}
	}
	return series
}

// projectMonth computes one month from the liquidity carried in.
func projectMonth(inst Instrument, liquidity, leverage, contribution float64,
	month int, date time.Time, taxFundBefore float64, thr JobThresholds) MonthlyProjection {

	buyingPower := liquidity * leverage

	contracts := 0
	if inst.Price > 0 {
		contracts = int(math.Floor(buyingPower / (inst.Price * 100)))
		if contracts < 0 {
			contracts = 0
		}
	}

	premRate := PremiumRate(inst.Symbol)
	resRate := ReserveRate(inst.Symbol)

	gross := float64(contracts) * inst.Price * 100 * premRate
	tax := gross * TaxRate
	reserve := gross * resRate
	net := gross * (1 - TaxRate - resRate)

	p := MonthlyProjection{
		Month:            month,
		Date:             date,
		GrossIncome:      gross,
		TaxReserve:       tax,
		StrategicReserve: reserve,
		NetIncome:        net,
		TotalLiquidity:   liquidity + net + contribution,
		BuyingPower:      buyingPower,
		Contracts:        contracts,
		YearTaxFund:      taxFundBefore + tax,
	}

	if thr.Survival > 0 {
		p.WillSurvive = net >= thr.Survival
		p.WillThrive = net >= thr.Thriving
		netFactor := premRate * (1 - TaxRate - resRate)
		if net < thr.Survival {
			p.CapitalForSurvival = (thr.Survival - net) / netFactor
		}
		if net < thr.Thriving {
			p.CapitalForThriving = (thr.Thriving - net) / netFactor
		}
	}
	return p
}
