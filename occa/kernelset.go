package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/numgrid/kernelconform/conformance"
)

// KernelSet holds the compiled lgamma kernel variants for a set of widths on
// one device. Free releases the kernels; the device itself stays owned by
// the caller.
type KernelSet struct {
	device  *gocca.OCCADevice
	kernels map[int]*gocca.OCCAKernel
}

// NewKernelSet builds the kernel variant for every requested width.
func NewKernelSet(device *gocca.OCCADevice, widths []int) (*KernelSet, error) {
	ks := &KernelSet{
		device:  device,
		kernels: make(map[int]*gocca.OCCAKernel),
	}

	for _, w := range widths {
		name := KernelName(w)
		source := KernelSource(w)

		var kernel *gocca.OCCAKernel
		var err error
		if device.Mode() == "OpenMP" {
			// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
			props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
			kernel, err = device.BuildKernelFromString(source, name, props)
			props.Free()
		} else {
			kernel, err = device.BuildKernelFromString(source, name, nil)
		}
		if err != nil {
			ks.Free()
			return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
		}
		ks.kernels[w] = kernel
	}

	return ks, nil
}

// Invoke returns the harness callback for one width, or nil when the width
// was not built. Each call round-trips the lane vectors through device
// memory: host input in, kernel run, value and sign vectors back out.
func (ks *KernelSet) Invoke(width int) conformance.InvokeFunc {
	kernel, exists := ks.kernels[width]
	if !exists {
		return nil
	}

	return func(in []float32) ([]float32, []int32, error) {
		if len(in) != width {
			return nil, nil, fmt.Errorf("kernel %s: got %d lanes, want %d",
				KernelName(width), len(in), width)
		}

		bytes := int64(width * 4)
		inMem := ks.device.Malloc(bytes, unsafe.Pointer(&in[0]), nil)
		defer inMem.Free()
		outMem := ks.device.Malloc(bytes, nil, nil)
		defer outMem.Free()
		signMem := ks.device.Malloc(bytes, nil, nil)
		defer signMem.Free()

		if err := kernel.RunWithArgs(inMem, outMem, signMem); err != nil {
			return nil, nil, fmt.Errorf("kernel execution failed: %w", err)
		}
		ks.device.Finish()

		out := make([]float32, width)
		signs := make([]int32, width)
		outMem.CopyTo(unsafe.Pointer(&out[0]), bytes)
		signMem.CopyTo(unsafe.Pointer(&signs[0]), bytes)
		return out, signs, nil
	}
}

// Kernels returns the callback map in the shape the conformance runner
// consumes.
func (ks *KernelSet) Kernels() map[int]conformance.InvokeFunc {
	m := make(map[int]conformance.InvokeFunc, len(ks.kernels))
	for w := range ks.kernels {
		m[w] = ks.Invoke(w)
	}
	return m
}

// Free releases all compiled kernels.
func (ks *KernelSet) Free() {
	for _, kernel := range ks.kernels {
		kernel.Free()
	}
	ks.kernels = make(map[int]*gocca.OCCAKernel)
}
