package occa

import (
	"fmt"

	"github.com/notargets/gocca"
)

// NewDevice creates an OCCA device from a JSON properties string, e.g.
// `{"mode": "CUDA", "device_id": 0}`. An empty string selects the first
// available backend, preferring parallel ones.
func NewDevice(props string) (*gocca.OCCADevice, error) {
	if props != "" {
		return gocca.NewDevice(props)
	}

	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}
	for _, p := range backends {
		device, err := gocca.NewDevice(p)
		if err == nil {
			return device, nil
		}
	}
	return nil, fmt.Errorf("no OCCA backend available")
}
