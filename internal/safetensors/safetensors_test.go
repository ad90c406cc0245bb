package safetensors

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOpenRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "w.safetensors")
	err := Create(path, []Tensor{
		{Name: "emb", Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}},
		{Name: "bias", Shape: []int{2}, Data: []float32{-0.5, 0.25}},
	}, map[string]string{"format": "toy"})
	require.NoError(t, err)

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bias", "emb"}, f.Names())
	assert.Equal(t, "toy", f.Metadata["format"])

	emb, info, err := f.ReadTensorF32("emb")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, info.Shape)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, emb)

	bias, _, err := f.ReadTensorF32("bias")
	require.NoError(t, err)
	assert.Equal(t, []float32{-0.5, 0.25}, bias)

	_, _, err = f.ReadTensorF32("missing")
	require.Error(t, err)
}

func TestWriteRejectsShapeMismatch(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := Write(&buf, []Tensor{{Name: "x", Shape: []int{3}, Data: []float32{1}}}, nil)
	require.Error(t, err)

	err = Write(&buf, []Tensor{
		{Name: "x", Shape: []int{1}, Data: []float32{1}},
		{Name: "x", Shape: []int{1}, Data: []float32{2}},
	}, nil)
	require.Error(t, err)
}

// writeRaw builds a file with a hand-written header and payload.
func writeRaw(t *testing.T, header map[string]tensorHeader, payload []byte) string {
	t.Helper()
	hb, err := json.Marshal(header)
	require.NoError(t, err)
	var buf bytes.Buffer
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(hb)))
	buf.Write(lenBuf[:])
	buf.Write(hb)
	buf.Write(payload)
	path := filepath.Join(t.TempDir(), "raw.safetensors")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestReadHalfPrecision(t *testing.T) {
	t.Parallel()
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint16(payload[0:], 0x3C00) // f16 1.0
	binary.LittleEndian.PutUint16(payload[2:], 0xC000) // f16 -2.0
	binary.LittleEndian.PutUint16(payload[4:], 0x3F80) // bf16 1.0
	binary.LittleEndian.PutUint16(payload[6:], 0x4040) // bf16 3.0
	path := writeRaw(t, map[string]tensorHeader{
		"h": {DType: F16, Shape: []int{2}, DataOffsets: []int64{0, 4}},
		"b": {DType: BF16, Shape: []int{2}, DataOffsets: []int64{4, 8}},
	}, payload)

	f, err := Open(path)
	require.NoError(t, err)
	h, _, err := f.ReadTensorF32("h")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2}, h)
	b, _, err := f.ReadTensorF32("b")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3}, b)
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	bad := writeRaw(t, map[string]tensorHeader{
		"x": {DType: F32, Shape: []int{1}, DataOffsets: []int64{4, 0}},
	}, nil)
	_, err = Open(bad)
	require.Error(t, err)

	path := writeRaw(t, map[string]tensorHeader{
		"x": {DType: "I8", Shape: []int{1}, DataOffsets: []int64{0, 1}},
	}, []byte{1})
	f, err := Open(path)
	require.NoError(t, err)
	_, _, err = f.ReadTensorF32("x")
	require.Error(t, err)
}

func TestFP16Subnormal(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 5.960464477539063e-08, fp16ToFloat32(0x0001), 1e-12)
	assert.Equal(t, float32(0), fp16ToFloat32(0x0000))
}
