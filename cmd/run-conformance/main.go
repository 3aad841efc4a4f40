// Command run-conformance checks lgamma kernel variants against the
// double-precision reference across vector widths 1-4.
//
// Exit codes: 0 all widths passed, 1 any conformance failure, 2 invalid
// configuration.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/numgrid/kernelconform/conformance"
	"github.com/numgrid/kernelconform/kernels"
	"github.com/numgrid/kernelconform/occa"
	"github.com/numgrid/kernelconform/tolerance"
)

const (
	exitFail   = 1
	exitConfig = 2
)

func main() {
	var (
		widthsFlag = flag.String("widths", "1,2,3,4", "Comma-separated vector widths to test")
		absTol     = flag.Float64("abs-tol", 1e-5, "Absolute tolerance")
		relTol     = flag.Float64("rel-tol", 1e-4, "Relative tolerance")
		nanEqual   = flag.Bool("nan-equal", false, "Treat NaN vs NaN as a match")
		inputFile  = flag.String("input-file", "", "JSON file with an array of input values (default: builtin sweep)")
		timeout    = flag.Duration("timeout", 0, "Per-invocation kernel timeout (0 = none)")
		device     = flag.String("device", "cpu", `Kernel backend: "cpu", "occa", or OCCA device properties JSON`)
	)
	flag.Parse()

	widths, err := parseWidths(*widthsFlag)
	if err != nil {
		fatalConfig(err)
	}

	runner, err := conformance.NewRunner(conformance.Config{
		Widths: widths,
		Tol: &tolerance.Config{
			AbsTol:   *absTol,
			RelTol:   *relTol,
			NaNEqual: *nanEqual,
		},
		Timeout: *timeout,
	})
	if err != nil {
		fatalConfig(err)
	}

	inputs := conformance.DefaultInputs()
	if *inputFile != "" {
		inputs, err = loadInputs(*inputFile)
		if err != nil {
			fatalConfig(err)
		}
	}

	kernelsByWidth, cleanup, err := selectKernels(*device, widths)
	if err != nil {
		fatalConfig(err)
	}
	defer cleanup()

	reports, err := runner.Run(conformance.CasesFrom(inputs), kernelsByWidth)
	if err != nil {
		var cfgErr *conformance.ConfigurationError
		if errors.As(err, &cfgErr) {
			fatalConfig(err)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFail)
	}

	failed := 0
	for _, report := range reports {
		fmt.Println(report)
		if !report.AllPassed {
			failed++
		}
	}
	fmt.Printf("reports=%d failed=%d\n", len(reports), failed)

	if !conformance.AllPassed(reports) {
		os.Exit(exitFail)
	}
}

func parseWidths(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid widths %q: %w", s, err)
		}
		widths = append(widths, w)
	}
	return widths, nil
}

func loadInputs(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	var inputs []float64
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("input file %s contains no values", path)
	}
	return inputs, nil
}

// selectKernels resolves the kernel backend: the builtin CPU kernels, or
// OCCA-built device kernels for every requested width.
func selectKernels(device string, widths []int) (map[int]conformance.InvokeFunc, func(), error) {
	if device == "cpu" {
		m := make(map[int]conformance.InvokeFunc, len(widths))
		for _, w := range widths {
			m[w] = kernels.Lgamma
		}
		return m, func() {}, nil
	}

	props := device
	if device == "occa" {
		props = ""
	}
	dev, err := occa.NewDevice(props)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create device: %w", err)
	}
	ks, err := occa.NewKernelSet(dev, widths)
	if err != nil {
		dev.Free()
		return nil, nil, err
	}
	cleanup := func() {
		ks.Free()
		dev.Free()
	}
	return ks.Kernels(), cleanup, nil
}

func fatalConfig(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitConfig)
}
