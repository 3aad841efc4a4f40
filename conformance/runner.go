package conformance

import (
	"time"

	"github.com/numgrid/kernelconform/tolerance"
)

// Config controls one conformance run.
type Config struct {
	// Widths lists the vector widths to exercise. Empty means all
	// supported widths.
	Widths []int

	// Tol is the comparison tolerance. Nil means tolerance.Default; a
	// pointer to the zero Config requests exact comparison.
	Tol *tolerance.Config

	// Timeout bounds a single kernel invocation. Zero means no timeout.
	// A timed-out invocation fails its WidthReport; remaining cases
	// still run.
	Timeout time.Duration
}

// Runner iterates test cases against kernel variants per width. It holds no
// mutable cross-call state: every Run call is independent, so a run can be
// repeated from scratch at any time.
type Runner struct {
	widths     []int
	timeout    time.Duration
	dispatcher Dispatcher
}

// NewRunner validates cfg and returns a runner. Unsupported or duplicate
// widths and malformed tolerances are ConfigurationErrors.
func NewRunner(cfg Config) (*Runner, error) {
	widths := cfg.Widths
	if len(widths) == 0 {
		widths = SupportedWidths
	}
	seen := make(map[int]bool, len(widths))
	for _, w := range widths {
		if !widthSupported(w) {
			return nil, configErrorf("widths", "unsupported width %d, must be one of %v",
				w, SupportedWidths)
		}
		if seen[w] {
			return nil, configErrorf("widths", "duplicate width %d", w)
		}
		seen[w] = true
	}

	tol := tolerance.Default()
	if cfg.Tol != nil {
		tol = *cfg.Tol
	}
	if err := tol.Validate(); err != nil {
		return nil, configErrorf("tolerance", "%v", err)
	}
	if cfg.Timeout < 0 {
		return nil, configErrorf("timeout", "must be non-negative, got %v", cfg.Timeout)
	}

	return &Runner{
		widths:     append([]int(nil), widths...),
		timeout:    cfg.Timeout,
		dispatcher: Dispatcher{Tol: tol},
	}, nil
}

// Run evaluates every test case at every configured width, in order, and
// returns one WidthReport per (case, width) pair. Execution is sequential
// and deterministic given deterministic kernel callbacks.
//
// A missing kernel for a configured width is a ConfigurationError detected
// before any kernel is invoked.
func (r *Runner) Run(cases []TestCase, kernelsByWidth map[int]InvokeFunc) ([]WidthReport, error) {
	for _, w := range r.widths {
		if kernelsByWidth[w] == nil {
			return nil, configErrorf("kernels", "no kernel for width %d", w)
		}
	}

	reports := make([]WidthReport, 0, len(cases)*len(r.widths))
	for _, tc := range cases {
		for _, w := range r.widths {
			invoke := kernelsByWidth[w]
			if r.timeout > 0 {
				invoke = r.withTimeout(w, tc.InputValue, invoke)
			}
			report, err := r.dispatcher.RunWidth(w, tc, invoke)
			if err != nil {
				return nil, err
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// AllPassed reports overall success: the logical AND over all width reports.
func AllPassed(reports []WidthReport) bool {
	for _, r := range reports {
		if !r.AllPassed {
			return false
		}
	}
	return true
}

type invokeResult struct {
	out   []float32
	signs []int32
	err   error
}

// withTimeout wraps a kernel callback so a hung invocation fails with a
// TimeoutError instead of blocking the run. A kernel that never returns
// leaks its goroutine; the harness has no way to cancel the external call.
func (r *Runner) withTimeout(width int, input float64, invoke InvokeFunc) InvokeFunc {
	return func(in []float32) ([]float32, []int32, error) {
		done := make(chan invokeResult, 1)
		go func() {
			out, signs, err := invoke(in)
			done <- invokeResult{out: out, signs: signs, err: err}
		}()

		select {
		case res := <-done:
			return res.out, res.signs, res.err
		case <-time.After(r.timeout):
			return nil, nil, &TimeoutError{Width: width, Input: input, After: r.timeout}
		}
	}
}
