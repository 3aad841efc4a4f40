// Package conformance verifies numeric compute kernels against a trusted
// reference across scalar and fixed-width vector inputs. A kernel under test
// is an opaque callback supplied by the host runtime; the harness broadcasts
// each test input across the lanes of every configured width, invokes the
// kernel variant for that width, and compares each lane's output against the
// reference within tolerance.
package conformance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/numgrid/kernelconform/reference"
)

// SupportedWidths lists the vector widths a kernel variant may operate on.
var SupportedWidths = []int{1, 2, 3, 4}

// InvokeFunc invokes one kernel variant on a width-sized input vector and
// returns the value and sign output vectors, both of the same length as the
// input. It models the external compute-kernel execution boundary and is the
// only side-effecting dependency of the harness.
type InvokeFunc func(in []float32) (out []float32, signs []int32, err error)

// TestCase pairs one scalar input with its reference outputs. Immutable once
// built.
type TestCase struct {
	InputValue     float64
	ExpectedOutput float64
	ExpectedSign   int
}

// CaseFor builds the test case for input x, deriving the expected value and
// sign from the reference evaluator.
func CaseFor(x float64) TestCase {
	v, s := reference.Evaluate(x)
	return TestCase{InputValue: x, ExpectedOutput: v, ExpectedSign: s}
}

// CasesFrom builds one test case per input value.
func CasesFrom(inputs []float64) []TestCase {
	cases := make([]TestCase, len(inputs))
	for i, x := range inputs {
		cases[i] = CaseFor(x)
	}
	return cases
}

// LaneResult records the kernel output for one vector lane and whether it
// matched the reference within tolerance.
type LaneResult struct {
	Lane         int
	ActualOutput float64
	ActualSign   int
	Passed       bool
}

// WidthReport aggregates the lane results of one kernel invocation at one
// vector width. Lane count always equals Width, except when Err is set and
// no lanes were produced.
type WidthReport struct {
	Width     int
	Case      TestCase
	Lanes     []LaneResult
	AllPassed bool

	// Err records an invocation-level failure (timeout, kernel error).
	// When set, AllPassed is false and Lanes is empty.
	Err error

	// MaxAbsErr and MaxRelErr summarize the worst lane error versus the
	// expected value. Zero when the expected value is non-finite.
	MaxAbsErr float64
	MaxRelErr float64
}

// FailedLanes returns the indices of lanes that did not pass, in order.
func (r WidthReport) FailedLanes() []int {
	failed := make([]int, 0, len(r.Lanes))
	for _, lane := range r.Lanes {
		if !lane.Passed {
			failed = append(failed, lane.Lane)
		}
	}
	sort.Ints(failed)
	return failed
}

// String renders the report as one line of the conformance output format.
func (r WidthReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "width=%d passed=%t lanes_failed=%s",
		r.Width, r.AllPassed, formatLanes(r.FailedLanes()))
	if len(r.Lanes) > 0 {
		fmt.Fprintf(&sb, " max_abs_err=%g max_rel_err=%g", r.MaxAbsErr, r.MaxRelErr)
	}
	if r.Err != nil {
		fmt.Fprintf(&sb, " error=%q", r.Err)
	}
	return sb.String()
}

func formatLanes(lanes []int) string {
	if len(lanes) == 0 {
		return "[]"
	}
	parts := make([]string, len(lanes))
	for i, l := range lanes {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// summarizeErrors fills MaxAbsErr/MaxRelErr from the lane outputs. Skipped
// for non-finite expectations, where an error magnitude is meaningless.
func (r *WidthReport) summarizeErrors() {
	if len(r.Lanes) == 0 || !isFinite(r.Case.ExpectedOutput) {
		return
	}
	absErrs := make([]float64, len(r.Lanes))
	for i, lane := range r.Lanes {
		if !isFinite(lane.ActualOutput) {
			// A non-finite actual against a finite expectation is an
			// unbounded error; the lane is already marked failed.
			continue
		}
		absErrs[i] = math.Abs(lane.ActualOutput - r.Case.ExpectedOutput)
	}
	r.MaxAbsErr = floats.Max(absErrs)
	if den := math.Abs(r.Case.ExpectedOutput); den > 0 {
		r.MaxRelErr = r.MaxAbsErr / den
	}
}

func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
