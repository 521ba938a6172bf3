// Package prices supplies current instrument prices to the forecast
// engine and the position screens.
//
// Providers form a fallback chain in the Secondary() style: a primary
// (usually HTTP) provider consults its secondary on failure, and every
// chain terminates at the static price table so callers always get a
// usable quote. Fetched entries are accepted only when finite and
// positive; anything else keeps the fallback value.
package prices

import (
	"context"
	"math"
)

// Provider supplies current prices for a set of symbols.
type Provider interface {
	// Prices returns a symbol-to-price map covering as many of the
	// requested symbols as the provider can serve.
	Prices(ctx context.Context, symbols []string) (map[string]float64, error)

	// Secondary is the fallback consulted when this provider fails;
	// nil terminates the chain.
	Secondary() Provider
}

// usable reports whether a fetched price may replace a fallback value.
func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// merge overlays usable entries from fetched onto base, leaving base
// values in place for anything missing or degenerate.
func merge(base, fetched map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range fetched {
		if usable(v) {
			out[k] = v
		}
	}
	return out
}
