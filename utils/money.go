package utils

import "math"

// Round2 rounds x to 2 decimal places, half up. All persisted money amounts
// go through this so per-line prices and invoice totals reconcile exactly.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
