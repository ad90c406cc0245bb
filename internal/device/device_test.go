package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		want Device
	}{
		{"", Device{Kind: CPU}},
		{"cpu", Device{Kind: CPU}},
		{" CPU ", Device{Kind: CPU}},
		{"cpu:0", Device{Kind: CPU}},
		{"cuda", Device{Kind: CUDA}},
		{"cuda:2", Device{Kind: CUDA, Index: 2}},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestResolveRejectsUnknown(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"notavalidbackend", "cuda:x", "cuda:-1", "cpu:1", "auto:0", "tpu"} {
		_, err := Resolve(name)
		require.ErrorIs(t, err, ErrUnknownDevice, name)
	}
}

func TestResolveAuto(t *testing.T) {
	t.Parallel()
	d, err := Resolve("auto")
	require.NoError(t, err)
	if Has(CUDA) {
		assert.Equal(t, CUDA, d.Kind)
	} else {
		assert.Equal(t, CPU, d.Kind)
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "cpu", Device{Kind: CPU}.String())
	assert.Equal(t, "cuda:1", Device{Kind: CUDA, Index: 1}.String())
}

func TestCheck(t *testing.T) {
	t.Parallel()
	require.NoError(t, Check(Default))
	if !Has(CUDA) {
		require.ErrorIs(t, Check(Device{Kind: CUDA}), ErrUnavailable)
	}
	require.ErrorIs(t, Check(Device{Kind: "tpu"}), ErrUnknownDevice)
}

func TestAvailableAlwaysHasCPU(t *testing.T) {
	t.Parallel()
	avail := Available()
	require.NotEmpty(t, avail)
	assert.Equal(t, Default, avail[0])
	assert.Contains(t, AvailableString(), "cpu")
	_ = HostFeatures()
}
