// Package advisor maps a short-option position snapshot to a recommended
// management action.
//
// The decision logic is an ordered rule table evaluated first-match-wins.
// Each rule's predicate is a compiled expression over named parameters
// (profit_pct, dte, price_change_pct, abs_price_change_pct, is_put,
// is_call), which keeps the priority ordering explicit and lets every
// rule be tested in isolation. Expired positions short-circuit to a
// terminal status before any rule runs.
package advisor

import (
	"fmt"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/deflationproof/wheelcast/internal/logger"
	"github.com/deflationproof/wheelcast/internal/position"
)

// Action is the recommended next step for a position.
type Action string

const (
	ActionRoll    Action = "ROLL"
	ActionChoose  Action = "CHOOSE"
	ActionPrepare Action = "PREPARE"
	ActionStay    Action = "STAY"
	ActionMonitor Action = "MONITOR"
)

// Status separates live advisory output from the terminal expired state.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Urgency is the qualitative color class attached to the advice.
type Urgency string

const (
	UrgencyInfo  Urgency = "blue"
	UrgencyGood  Urgency = "green"
	UrgencyWarn  Urgency = "yellow"
	UrgencyAlert Urgency = "red"
)

// Advice is the advisor's output. It is a pure function of the snapshot
// and the evaluation time; nothing is persisted.
type Advice struct {
	Status           Status  `json:"status"`
	Action           Action  `json:"action,omitempty"`
	Urgency          Urgency `json:"urgency"`
	Message          string  `json:"message"`
	Rule             string  `json:"rule,omitempty"`
	ProfitPct        float64 `json:"profit_pct"`
	DaysToExpiration int     `json:"days_to_expiration"`
}

// Context carries the derived values rules are evaluated against.
type Context struct {
	Snapshot         position.Snapshot
	ProfitPct        float64
	PriceChangePct   float64
	DaysToExpiration int
}

// params exposes the context to rule expressions under stable names.
func (c Context) params() map[string]interface{} {
	abs := c.PriceChangePct
	if abs < 0 {
		abs = -abs
	}
	return map[string]interface{}{
		"profit_pct":           c.ProfitPct,
		"price_change_pct":     c.PriceChangePct,
		"abs_price_change_pct": abs,
		"dte":                  float64(c.DaysToExpiration),
		"is_put":               c.Snapshot.Side.IsPut(),
		"is_call":              c.Snapshot.Side.IsCall(),
		"quantity":             float64(c.Snapshot.Quantity),
	}
}

// Rule is one entry of the decision table.
type Rule struct {
	Name    string
	Action  Action
	Urgency Urgency
	expr    *govaluate.EvaluableExpression
	message func(Context) string
}

// Matches evaluates the rule's predicate against a context.
func (r Rule) Matches(c Context) (bool, error) {
	out, err := r.expr.Evaluate(c.params())
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", r.Name, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("rule %s: predicate is not boolean", r.Name)
	}
	return ok, nil
}

// Advisor evaluates snapshots against a rule table.
type Advisor struct {
	rules []Rule
}

// New returns an advisor running the built-in rule table.
func New() *Advisor { return &Advisor{rules: DefaultRules()} }

// NewWithRules returns an advisor running a custom table, evaluated in
// the given order before falling back to MONITOR.
func NewWithRules(rules []Rule) *Advisor { return &Advisor{rules: rules} }

// Advise evaluates a snapshot at the given time.
//
// Returns:
//   - Advice: the first matching rule's action, a MONITOR fallback, or
//     the terminal expired status when the position is past expiration
//   - error: malformed snapshot input or a failing rule predicate
func (a *Advisor) Advise(snap position.Snapshot, now time.Time) (Advice, error) {
	if err := snap.Validate(); err != nil {
		return Advice{}, err
	}

	dte := snap.DaysToExpiration(now)
	if dte < 0 {
		// Terminal state: never fed through the rule table.
		return Advice{
			Status:  StatusExpired,
			Urgency: UrgencyAlert,
			Message: fmt.Sprintf("This position expired on %s. Add a new position to track a new roll or open position.",
				snap.Expiration.Format("2006-01-02")),
			ProfitPct:        snap.ProfitPct(),
			DaysToExpiration: dte,
		}, nil
	}

	ctx := Context{
		Snapshot:         snap,
		ProfitPct:        snap.ProfitPct(),
		PriceChangePct:   snap.PriceChangePct(),
		DaysToExpiration: dte,
	}

	for _, r := range a.rules {
		ok, err := r.Matches(ctx)
		if err != nil {
			return Advice{}, err
		}
		if ok {
			logger.Debugf("event=advice symbol=%s rule=%s action=%s profit=%.1f dte=%d",
				snap.Symbol, r.Name, r.Action, ctx.ProfitPct, dte)
			return Advice{
				Status:           StatusActive,
				Action:           r.Action,
				Urgency:          r.Urgency,
				Message:          r.message(ctx),
				Rule:             r.Name,
				ProfitPct:        ctx.ProfitPct,
				DaysToExpiration: dte,
			}, nil
		}
	}

	return Advice{
		Status:           StatusActive,
		Action:           ActionMonitor,
		Urgency:          UrgencyInfo,
		Message:          "Position within normal parameters. Continue monitoring.",
		ProfitPct:        ctx.ProfitPct,
		DaysToExpiration: dte,
	}, nil
}

// Advise evaluates a snapshot against the built-in rule table.
func Advise(snap position.Snapshot, now time.Time) (Advice, error) {
	return New().Advise(snap, now)
}
