// Package forecast contains the month-by-month compounding projection of
// wheel-strategy income: buying power, premium collected, tax and
// strategic set-asides, and the "freedom month" where net income first
// covers the target.
//
// Design notes:
//   - Projections are pure functions of their input plus an injected
//     "now"; nothing here reads the wall clock or does I/O.
//   - Money values stay as raw float64 throughout the loop; rounding to
//     cents is a presentation concern and is never applied internally.
//   - Degenerate inputs (zero or negative prices, zero capital) produce
//     zero-contract months rather than errors. Only NaN/Inf input fails.
package forecast

import (
	"time"
)

// DefaultHorizonMonths caps a projection when no horizon is given.
const DefaultHorizonMonths = 60

// MaxInstruments is the most instruments a combined projection accepts.
const MaxInstruments = 2

// MinimumCapital is the pattern-day-trading floor for starting capital.
// It is enforced at the service boundary, not by the engine itself.
const MinimumCapital = 26000.0

// Strategy selects the leverage profile applied to liquidity.
type Strategy string

const (
	StrategyConservative Strategy = "conservative" // 1.25x buying power
	StrategyAggressive   Strategy = "aggressive"   // 1.50x buying power
)

// Leverage returns the buying-power multiplier for the strategy.
// Unknown values fall back to the conservative profile.
func (s Strategy) Leverage() float64 {
	if s == StrategyAggressive {
		return 1.50
	}
	return 1.25
}

// Instrument pairs a symbol with its current price. Prices at or below
// zero are treated as "no contracts supported", never as an error.
type Instrument struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Input is the immutable per-run configuration of a projection.
type Input struct {
	Job                 JobType      `json:"job_type,omitempty"`
	TargetMonthlyIncome float64      `json:"target_monthly_income"`
	StartingCapital     float64      `json:"starting_capital"`
	MonthlyContribution float64      `json:"monthly_contribution"`
	Strategy            Strategy     `json:"strategy,omitempty"`
	Instruments         []Instrument `json:"instruments"`
	HorizonMonths       int          `json:"horizon_months,omitempty"`
}

func (in Input) horizon() int {
	if in.HorizonMonths > 0 {
		return in.HorizonMonths
	}
	return DefaultHorizonMonths
}

// MonthlyProjection is one simulated month.
//
// Invariant: GrossIncome == TaxReserve + StrategicReserve + NetIncome
// (within floating-point tolerance), and TotalLiquidity never decreases
// while the monthly contribution is non-negative.
type MonthlyProjection struct {
	Month            int       `json:"month"`
	Date             time.Time `json:"date"`
	GrossIncome      float64   `json:"gross_income"`
	TaxReserve       float64   `json:"tax_reserve"`
	StrategicReserve float64   `json:"strategic_reserve"`
	NetIncome        float64   `json:"net_income"`
	TotalLiquidity   float64   `json:"total_liquidity"`
	BuyingPower      float64   `json:"buying_power"`
	Contracts        int       `json:"contracts"`
	YearTaxFund      float64   `json:"year_tax_fund"`

	// Job-profile annotations; populated only when the input names a job.
	WillSurvive        bool    `json:"will_survive,omitempty"`
	WillThrive         bool    `json:"will_thrive,omitempty"`
	CapitalForSurvival float64 `json:"capital_for_survival,omitempty"`
	CapitalForThriving float64 `json:"capital_for_thriving,omitempty"`
}

// Result is a single-instrument projection. When the target is never
// reached inside the horizon the full series is still returned, with
// Reached false and FreedomMonth -1.
type Result struct {
	Symbol             string              `json:"symbol"`
	Reached            bool                `json:"reached"`
	FreedomMonth       int                 `json:"freedom_month"`
	FreedomDate        time.Time           `json:"freedom_date,omitempty"`
	NetIncomeAtFreedom float64             `json:"net_income_at_freedom,omitempty"`
	LiquidityAtFreedom float64             `json:"liquidity_at_freedom,omitempty"`
	ReserveAtFreedom   float64             `json:"reserve_at_freedom,omitempty"`
	Series             []MonthlyProjection `json:"series"`
}

// InstrumentForecast is one instrument's share of a combined projection.
type InstrumentForecast struct {
	Symbol string              `json:"symbol"`
	Series []MonthlyProjection `json:"series"`
}

// CombinedResult aggregates up to MaxInstruments independent projections.
// Freedom is the first month where the *sum* of the per-instrument net
// incomes meets the target, not each individually.
type CombinedResult struct {
	Instruments  []InstrumentForecast `json:"instruments"`
	Reached      bool                 `json:"reached"`
	FreedomMonth int                  `json:"freedom_month"`
	FreedomDate  time.Time            `json:"freedom_date,omitempty"`
}
