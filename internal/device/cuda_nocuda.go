//go:build !cuda

package device

const cudaEnabled = false

func cudaDeviceCount() int { return 0 }
