//go:build cuda

package device

import (
	"os"
	"strings"
)

const cudaEnabled = true

// cudaDeviceCount honours CUDA_VISIBLE_DEVICES; an unset variable means one
// device.
func cudaDeviceCount() int {
	v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES")
	if !ok {
		return 1
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "-1" {
		return 0
	}
	return len(strings.Split(v, ","))
}
