// Package reference computes trusted expected values for numeric kernel
// conformance checks. Results are double precision so that single-precision
// kernel output is always compared against something strictly more accurate.
package reference

import "math"

// Evaluate returns log|Γ(x)| together with the sign of Γ(x).
//
// At the poles of the gamma function (zero and the negative integers) there is
// no platform-independent answer: some math libraries raise, some return
// garbage signs. Evaluate normalizes all poles to the sentinel pair
// (+Inf, 0), with sign 0 meaning "undefined". Callers that compare signs
// should treat an expected sign of 0 as matching any actual sign.
//
// Negative infinity gets the same sentinel: it is the limit of the pole
// sequence, and C99 lgammaf returns +Inf there while Go's math.Lgamma
// returns -Inf. The kernels under test are built on the C convention.
func Evaluate(x float64) (value float64, sign int) {
	if IsPole(x) || math.IsInf(x, -1) {
		return math.Inf(1), 0
	}
	return math.Lgamma(x)
}

// IsPole reports whether x is a pole of the gamma function, i.e. a finite
// non-positive integer.
func IsPole(x float64) bool {
	return x <= 0 && !math.IsInf(x, 0) && x == math.Trunc(x)
}
