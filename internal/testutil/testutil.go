package testutil

import (
	"math"
	"testing"
	"time"
)

//
// --- Numeric comparison helpers ---
//

// Approx fails the test when got is not within tol of want.
func Approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

// ApproxPct fails the test when got differs from want by more than
// pct percent of want. Useful for values with scale-dependent error.
func ApproxPct(t *testing.T, name string, got, want, pct float64) {
	t.Helper()
	tol := math.Abs(want) * pct / 100
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (±%v%%)", name, got, want, pct)
	}
}

//
// --- Clock helpers ---
//

// Date builds a UTC midnight timestamp. Tests pin the clock with it so
// month arithmetic and day counts stay deterministic.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysFrom returns now shifted forward by n calendar days.
func DaysFrom(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, n)
}
