package conformance

import (
	"fmt"

	"github.com/numgrid/kernelconform/tolerance"
)

// Dispatcher replicates a scalar test case across the lanes of one vector
// width and checks every lane against the case's expected outputs.
type Dispatcher struct {
	Tol tolerance.Config
}

// RunWidth broadcasts tc.InputValue into a width-sized input vector, invokes
// the kernel callback, and builds one LaneResult per lane. The dispatcher
// itself is a pure function of its inputs; invoke is the only side effect.
func (d Dispatcher) RunWidth(width int, tc TestCase, invoke InvokeFunc) (WidthReport, error) {
	if !widthSupported(width) {
		return WidthReport{}, configErrorf("width", "unsupported width %d, must be one of %v",
			width, SupportedWidths)
	}
	if invoke == nil {
		return WidthReport{}, configErrorf("kernel", "no kernel callback for width %d", width)
	}

	in := make([]float32, width)
	for i := range in {
		in[i] = float32(tc.InputValue)
	}

	out, signs, err := invoke(in)
	if err != nil {
		return WidthReport{
			Width: width,
			Case:  tc,
			Err:   fmt.Errorf("kernel invocation failed: %w", err),
		}, nil
	}
	if len(out) != width || len(signs) != width {
		return WidthReport{
			Width: width,
			Case:  tc,
			Err: fmt.Errorf("kernel returned %d values and %d signs, want %d of each",
				len(out), len(signs), width),
		}, nil
	}

	report := WidthReport{
		Width:     width,
		Case:      tc,
		Lanes:     make([]LaneResult, width),
		AllPassed: true,
	}
	for i := 0; i < width; i++ {
		lane := LaneResult{
			Lane:         i,
			ActualOutput: float64(out[i]),
			ActualSign:   int(signs[i]),
		}
		lane.Passed = d.Tol.Compare(lane.ActualOutput, tc.ExpectedOutput) &&
			signMatches(lane.ActualSign, tc.ExpectedSign)
		if !lane.Passed {
			report.AllPassed = false
		}
		report.Lanes[i] = lane
	}
	report.summarizeErrors()
	return report, nil
}

// signMatches treats an expected sign of 0 as "undefined": the reference uses
// it at gamma poles, where conforming kernels may report any sign.
func signMatches(actual, expected int) bool {
	return expected == 0 || actual == expected
}

func widthSupported(width int) bool {
	for _, w := range SupportedWidths {
		if w == width {
			return true
		}
	}
	return false
}
