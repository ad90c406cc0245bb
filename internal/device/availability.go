package device

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// Has reports whether a device kind is compiled into this build.
func Has(kind string) bool {
	switch kind {
	case CPU:
		return true
	case CUDA:
		return cudaEnabled && cudaDeviceCount() > 0
	default:
		return false
	}
}

// Available returns every usable device.
func Available() []Device {
	out := []Device{{Kind: CPU}}
	if Has(CUDA) {
		for i := 0; i < cudaDeviceCount(); i++ {
			out = append(out, Device{Kind: CUDA, Index: i})
		}
	}
	return out
}

// AvailableString returns a comma-separated list of available devices.
func AvailableString() string {
	names := make([]string, 0, 2)
	for _, d := range Available() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// HostFeatures lists the SIMD extensions the host CPU reports.
func HostFeatures() []string {
	var f []string
	add := func(ok bool, name string) {
		if ok {
			f = append(f, name)
		}
	}
	add(cpu.X86.HasSSE42, "sse4.2")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasFPHP, "fphp")
	add(cpu.ARM64.HasSVE, "sve")
	return f
}
