// Package tolerance implements floating-point comparison for kernel
// conformance checks, with absolute and relative error bounds sized for
// single-precision kernel output verified against double-precision references.
package tolerance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Config defines tolerance parameters for floating-point comparison.
type Config struct {
	// AbsTol is the absolute tolerance for values near zero.
	AbsTol float64

	// RelTol is the relative tolerance as a fraction of the expected value.
	RelTol float64

	// NaNEqual determines whether NaN actual vs NaN expected counts as a
	// match. Off by default: NaN propagation differences are often bugs.
	NaNEqual bool
}

// Default returns the tolerance configuration for typical single-precision
// kernel conformance margins.
func Default() Config {
	return Config{
		AbsTol: 1e-5,
		RelTol: 1e-4,
	}
}

// Strict returns a tolerance configuration for near-exact comparisons.
func Strict() Config {
	return Config{
		AbsTol: 1e-9,
		RelTol: 1e-7,
	}
}

// Compare reports whether actual matches expected within
// |actual - expected| <= max(AbsTol, RelTol*|expected|).
//
// Infinities of the same sign match exactly. NaN against NaN matches only
// when NaNEqual is set; NaN against anything finite never matches.
func (c Config) Compare(actual, expected float64) bool {
	if math.IsNaN(actual) || math.IsNaN(expected) {
		return c.NaNEqual && scalar.Same(actual, expected)
	}
	if math.IsInf(actual, 0) || math.IsInf(expected, 0) {
		return actual == expected
	}
	if actual == expected {
		return true
	}
	diff := math.Abs(actual - expected)
	return diff <= math.Max(c.AbsTol, c.RelTol*math.Abs(expected))
}

// Validate checks the configuration for malformed tolerance values.
func (c Config) Validate() error {
	if math.IsNaN(c.AbsTol) || c.AbsTol < 0 {
		return errMalformed("AbsTol", c.AbsTol)
	}
	if math.IsNaN(c.RelTol) || c.RelTol < 0 {
		return errMalformed("RelTol", c.RelTol)
	}
	return nil
}

type malformedError struct {
	field string
	value float64
}

func errMalformed(field string, value float64) error {
	return &malformedError{field: field, value: value}
}

func (e *malformedError) Error() string {
	return fmt.Sprintf("tolerance: malformed %s %v: must be a non-negative number", e.field, e.value)
}
