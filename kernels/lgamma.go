// Package kernels provides CPU implementations of the kernels under test, so
// conformance runs work without a GPU runtime. They use the same invocation
// contract as device kernels and are themselves subject to conformance, not
// trusted references.
package kernels

import "math"

// Lgamma computes single-precision log|Γ| lane by lane, with the sign of Γ
// written to the companion sign vector. Satisfies conformance.InvokeFunc for
// any lane count.
func Lgamma(in []float32) ([]float32, []int32, error) {
	out := make([]float32, len(in))
	signs := make([]int32, len(in))
	for i, v := range in {
		x := float64(v)
		if math.IsInf(x, -1) {
			// C99 lgammaf(-Inf) is +Inf; Go's math.Lgamma returns -Inf.
			out[i] = float32(math.Inf(1))
			signs[i] = 0
			continue
		}
		lg, sign := math.Lgamma(x)
		out[i] = float32(lg)
		signs[i] = int32(sign)
	}
	return out, signs, nil
}
