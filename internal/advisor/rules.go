package advisor

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Knetic/govaluate"
)

// mustRule compiles a built-in rule; the table is fixed at build time so
// a bad expression is a programming error.
func mustRule(name, expr string, action Action, urgency Urgency, message func(Context) string) Rule {
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		panic(fmt.Sprintf("advisor: rule %s: %v", name, err))
	}
	return Rule{Name: name, Action: action, Urgency: urgency, expr: compiled, message: message}
}

// DefaultRules returns the built-in decision table in priority order.
//
// The ordering matters: the flat >50% profit-taking rule outranks every
// side-specific rule, and the time-based call rule outranks the
// expiration-day assignment band (so a call at 0 DTE with low profit gets
// CHOOSE, not PREPARE, unless it slipped into the band with ≥49% profit).
func DefaultRules() []Rule {
	return []Rule{
		mustRule("profit_over_50", "profit_pct > 50",
			ActionRoll, UrgencyGood, func(c Context) string {
				return fmt.Sprintf("Roll this position. With %.1f%% profit secured, roll to 40-45 delta strike 30-35 days out.", c.ProfitPct)
			}),
		mustRule("put_time_roll_profit", "is_put && dte <= 15 && profit_pct > 0",
			ActionRoll, UrgencyGood, func(c Context) string {
				return "Time-based roll with profit. Roll to 40-45 delta strike 30-35 days out."
			}),
		mustRule("put_defensive_roll", "is_put && dte <= 15 && profit_pct < 0",
			ActionRoll, UrgencyWarn, func(c Context) string {
				return fmt.Sprintf("Roll to same strike ($%.2f) 30-35 days out. Winning Campaign initiated.", c.Snapshot.Strike)
			}),
		mustRule("put_assignment_imminent", "is_put && dte == 0 && price_change_pct < 0 && price_change_pct > -1",
			ActionPrepare, UrgencyInfo, func(c Context) string {
				return fmt.Sprintf("Prepare to be put %d shares at $%.2f in %d days.",
					c.Snapshot.Shares(), c.Snapshot.Strike, c.DaysToExpiration)
			}),
		mustRule("call_profit_choice", "is_call && profit_pct >= 50",
			ActionChoose, UrgencyGood, func(c Context) string {
				return "Choose to: 1) Roll to same strike 30-35 days out, or 2) Close position and hold shares"
			}),
		mustRule("call_time_choice", "is_call && profit_pct < 49 && dte <= 15",
			ActionChoose, UrgencyWarn, func(c Context) string {
				return "Time-based management: 1) Roll to same strike 30-35 days out, or 2) Close position and hold shares"
			}),
		mustRule("call_away_imminent", "is_call && dte == 0 && price_change_pct >= -1 && price_change_pct <= 0",
			ActionPrepare, UrgencyInfo, func(c Context) string {
				return fmt.Sprintf("Prepare to have %d shares called away at $%.2f in %d days.",
					c.Snapshot.Shares(), c.Snapshot.Strike, c.DaysToExpiration)
			}),
		mustRule("hold_through_swing", "abs_price_change_pct >= 4 && dte >= 14",
			ActionStay, UrgencyGood, func(c Context) string {
				return fmt.Sprintf("Stay in position. %d days remaining provides adequate time for price recovery.", c.DaysToExpiration)
			}),
	}
}

// RuleSpec is the serialized form of a custom rule overlay. The Expr uses
// the same parameter names as the built-in table.
type RuleSpec struct {
	Name    string  `json:"name"`
	Expr    string  `json:"expr"`
	Action  Action  `json:"action"`
	Urgency Urgency `json:"urgency,omitempty"`
	Message string  `json:"message"`
}

// CompileRules turns rule specs into an evaluable table, preserving
// order. Custom rules carry static messages.
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		compiled, err := govaluate.NewEvaluableExpression(s.Expr)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", s.Name, err)
		}
		urgency := s.Urgency
		if urgency == "" {
			urgency = UrgencyInfo
		}
		msg := s.Message
		rules = append(rules, Rule{
			Name:    s.Name,
			Action:  s.Action,
			Urgency: urgency,
			expr:    compiled,
			message: func(Context) string { return msg },
		})
	}
	return rules, nil
}

// LoadRules reads a JSON array of rule specs and compiles it.
func LoadRules(r io.Reader) ([]Rule, error) {
	var specs []RuleSpec
	if err := json.NewDecoder(r).Decode(&specs); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	return CompileRules(specs)
}
