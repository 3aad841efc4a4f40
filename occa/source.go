// Package occa adapts OCCA compute kernels to the conformance harness. It
// regenerates the width-variant lgamma kernels from a single template,
// builds them on an OCCA device, and exposes them through the harness
// invocation contract. The sign of gamma is written to an explicit output
// buffer argument rather than a global allocation.
package occa

import "fmt"

// KernelName returns the kernel entry point for a vector width, following
// the FloatN naming of the generated sources these kernels descend from.
func KernelName(width int) string {
	if width == 1 {
		return "lgammaFloat"
	}
	return fmt.Sprintf("lgammaFloat%d", width)
}

// KernelSource generates the OKL source for one width variant. The width is
// baked in as the loop bound, so the kernel takes only the input vector and
// the two output vectors.
//
// The sign is computed from the lane value rather than lgammaf_r, which is
// not available on every OCCA backend: gamma is positive on the positive
// reals and alternates sign between consecutive negative poles.
func KernelSource(width int) string {
	return fmt.Sprintf(`
@kernel void %s(const float *in,
                float *out,
                int *outSignOfGamma) {
  for (int i = 0; i < %d; ++i; @tile(4, @outer, @inner)) {
    const float v = in[i];
    int sg = 1;
    if (v <= 0.f && floorf(v) == v) {
      sg = 0;
    } else if (v < 0.f) {
      const int k = (int) floorf(v);
      sg = ((-k) %% 2 == 1) ? -1 : 1;
    }
    out[i] = lgammaf(v);
    outSignOfGamma[i] = sg;
  }
}
`, KernelName(width), width)
}
