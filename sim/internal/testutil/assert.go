// Package testutil provides shared assertion helpers for the simulator's
// test packages. It must not import sim so that sim's own tests can use it.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertRateWithin checks that successes/trials lies within absTol of want.
// Used for Monte Carlo estimates where relative tolerance is meaningless near 0.
func AssertRateWithin(t *testing.T, name string, want float64, successes, trials int, absTol float64) {
	t.Helper()
	if trials <= 0 {
		t.Fatalf("%s: trials must be positive, got %d", name, trials)
	}
	got := float64(successes) / float64(trials)
	if math.Abs(got-want) > absTol {
		t.Errorf("%s: rate %v (%d/%d), want %v ± %v", name, got, successes, trials, want, absTol)
	}
}
