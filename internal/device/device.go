// Package device resolves compute device names. The decoding core never runs
// kernels itself; it resolves the name once, fails fast on garbage, and hands
// the result to models that know how to place their working tensors.
package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	CPU  = "cpu"
	CUDA = "cuda"
	Auto = "auto"
)

var (
	// ErrUnknownDevice is returned for names that do not parse as a device.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnavailable is returned by Check when the device exists as a name
	// but this build or host cannot run on it.
	ErrUnavailable = errors.New("device unavailable")
)

// Device identifies a compute target. Index is only meaningful for CUDA.
type Device struct {
	Kind  string
	Index int
}

// Default is the device used when none is selected.
var Default = Device{Kind: CPU}

func (d Device) String() string {
	if d.Kind == CUDA {
		return fmt.Sprintf("%s:%d", d.Kind, d.Index)
	}
	return d.Kind
}

// Resolve parses a device name such as "cpu", "cuda", "cuda:1" or "auto".
// An empty name resolves to the CPU. "auto" picks the first CUDA device when
// the build supports it.
func Resolve(name string) (Device, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Default, nil
	}
	kind, idx, hasIdx := strings.Cut(n, ":")
	switch kind {
	case CPU:
		if hasIdx && idx != "0" {
			return Device{}, fmt.Errorf("%w %q: cpu takes no index", ErrUnknownDevice, name)
		}
		return Device{Kind: CPU}, nil
	case Auto:
		if hasIdx {
			return Device{}, fmt.Errorf("%w %q: auto takes no index", ErrUnknownDevice, name)
		}
		if Has(CUDA) {
			return Device{Kind: CUDA}, nil
		}
		return Device{Kind: CPU}, nil
	case CUDA:
		d := Device{Kind: CUDA}
		if hasIdx {
			i, err := strconv.Atoi(idx)
			if err != nil || i < 0 {
				return Device{}, fmt.Errorf("%w %q: bad index %q", ErrUnknownDevice, name, idx)
			}
			d.Index = i
		}
		return d, nil
	default:
		return Device{}, fmt.Errorf("%w %q (expected cpu, cuda[:N], or auto)", ErrUnknownDevice, name)
	}
}

// Check reports whether d can actually be used by this build on this host.
func Check(d Device) error {
	switch d.Kind {
	case CPU:
		return nil
	case CUDA:
		if !Has(CUDA) {
			return fmt.Errorf("%w: %s: cuda support not compiled in", ErrUnavailable, d)
		}
		if d.Index >= cudaDeviceCount() {
			return fmt.Errorf("%w: %s: only %d cuda device(s) visible", ErrUnavailable, d, cudaDeviceCount())
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownDevice, d.Kind)
	}
}
