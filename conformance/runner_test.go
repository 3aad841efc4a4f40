package conformance

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/numgrid/kernelconform/tolerance"
)

func conformingKernels(widths ...int) map[int]InvokeFunc {
	if len(widths) == 0 {
		widths = SupportedWidths
	}
	m := make(map[int]InvokeFunc, len(widths))
	for _, w := range widths {
		m[w] = exactLgamma
	}
	return m
}

func TestNewRunner_Validation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"unsupported_width", Config{Widths: []int{1, 2, 5}}},
		{"zero_width", Config{Widths: []int{0}}},
		{"negative_width", Config{Widths: []int{-1}}},
		{"duplicate_width", Config{Widths: []int{2, 2}}},
		{"negative_abs_tol", Config{Tol: &tolerance.Config{AbsTol: -1, RelTol: 1e-4}}},
		{"nan_rel_tol", Config{Tol: &tolerance.Config{AbsTol: 1e-5, RelTol: math.NaN()}}},
		{"negative_timeout", Config{Timeout: -time.Second}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRunner(tc.cfg)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("NewRunner(%+v) error = %v, want ConfigurationError", tc.cfg, err)
			}
		})
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r, err := NewRunner(Config{})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if !reflect.DeepEqual(r.widths, SupportedWidths) {
		t.Errorf("default widths = %v, want %v", r.widths, SupportedWidths)
	}
	if r.dispatcher.Tol != tolerance.Default() {
		t.Errorf("default tolerance = %+v, want %+v", r.dispatcher.Tol, tolerance.Default())
	}
}

func TestNewRunner_ExactToleranceHonored(t *testing.T) {
	// An explicit zero tolerance is a valid configuration asking for exact
	// comparison; it must not be silently replaced by the defaults.
	exact, err := NewRunner(Config{Widths: []int{1}, Tol: &tolerance.Config{}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if exact.dispatcher.Tol != (tolerance.Config{}) {
		t.Fatalf("explicit zero tolerance replaced by %+v", exact.dispatcher.Tol)
	}

	tc := CaseFor(5)
	offByLittle := constKernel(
		[]float32{float32(tc.ExpectedOutput) + 1e-4},
		broadcastSigns(1, 1),
	)
	kernels := map[int]InvokeFunc{1: offByLittle}

	reports, err := exact.Run([]TestCase{tc}, kernels)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if AllPassed(reports) {
		t.Error("kernel off by 1e-4 passed under an explicit zero tolerance")
	}

	// The same kernel is within the default tolerance.
	loose, err := NewRunner(Config{Widths: []int{1}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	reports, err = loose.Run([]TestCase{tc}, kernels)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !AllPassed(reports) {
		t.Errorf("kernel off by 1e-4 failed under the default tolerance: %s", reports[0])
	}
}

func TestRun_MissingKernelAbortsBeforeInvocation(t *testing.T) {
	r, err := NewRunner(Config{Widths: []int{1, 2}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	invocations := 0
	counting := func(in []float32) ([]float32, []int32, error) {
		invocations++
		return exactLgamma(in)
	}

	_, err = r.Run(CasesFrom([]float64{1, 2}), map[int]InvokeFunc{1: counting})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Run error = %v, want ConfigurationError", err)
	}
	if invocations != 0 {
		t.Errorf("kernel invoked %d times before configuration check", invocations)
	}
}

func TestRun_ReportShapeAndOrder(t *testing.T) {
	r, err := NewRunner(Config{Widths: []int{1, 4}})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	inputs := []float64{0.5, 2, 5}
	reports, err := r.Run(CasesFrom(inputs), conformingKernels())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reports) != len(inputs)*2 {
		t.Fatalf("got %d reports, want %d", len(reports), len(inputs)*2)
	}

	// Width order inside each case follows the configured order.
	for i, report := range reports {
		wantWidth := []int{1, 4}[i%2]
		wantInput := inputs[i/2]
		if report.Width != wantWidth || report.Case.InputValue != wantInput {
			t.Errorf("report %d = width %d input %g, want width %d input %g",
				i, report.Width, report.Case.InputValue, wantWidth, wantInput)
		}
	}
	if !AllPassed(reports) {
		t.Error("conforming kernel should pass all reports")
	}
}

func TestRun_Restartable(t *testing.T) {
	r, err := NewRunner(Config{})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	cases := CasesFrom([]float64{0.5, 5, -2.5})
	first, err := r.Run(cases, conformingKernels())
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := r.Run(cases, conformingKernels())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated runs disagree; Run must hold no cross-call state")
	}
}

func TestRun_TimeoutIsolatedPerInvocation(t *testing.T) {
	r, err := NewRunner(Config{Widths: []int{1, 2}, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	hang := func(in []float32) ([]float32, []int32, error) {
		time.Sleep(500 * time.Millisecond)
		return exactLgamma(in)
	}
	kernels := map[int]InvokeFunc{1: hang, 2: exactLgamma}

	reports, err := r.Run(CasesFrom([]float64{1, 2}), kernels)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reports) != 4 {
		t.Fatalf("got %d reports, want 4", len(reports))
	}

	var timeouts, passes int
	for _, report := range reports {
		switch report.Width {
		case 1:
			var toErr *TimeoutError
			if !errors.As(report.Err, &toErr) {
				t.Errorf("width 1 report error = %v, want TimeoutError", report.Err)
				continue
			}
			timeouts++
		case 2:
			if !report.AllPassed {
				t.Errorf("width 2 should be unaffected by width 1 timeouts: %s", report)
				continue
			}
			passes++
		}
	}
	if timeouts != 2 || passes != 2 {
		t.Errorf("timeouts=%d passes=%d, want 2 and 2", timeouts, passes)
	}
	if AllPassed(reports) {
		t.Error("timed-out reports must fail the aggregate")
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Error("AllPassed(nil) = false, want true")
	}
	reports := []WidthReport{{AllPassed: true}, {AllPassed: false}}
	if AllPassed(reports) {
		t.Error("AllPassed with a failed report = true, want false")
	}
}
