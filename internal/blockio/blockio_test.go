package blockio

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, compression Compression, blockSize int, payload []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf, compression, blockSize)

	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	if len(payload) > 0 {
		assert.Positive(t, w.BytesWritten())
	}

	r := NewReader(&buf, compression)
	got := make([]byte, len(payload))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("shellpair"), 4096)

	rng := rand.New(rand.NewSource(42))
	incompressible := make([]byte, 16*1024)
	_, _ = rng.Read(incompressible)

	tests := []struct {
		name        string
		compression Compression
		payload     []byte
	}{
		{name: "none", compression: None, payload: compressible},
		{name: "lz4 compressible", compression: LZ4, payload: compressible},
		{name: "lz4 incompressible", compression: LZ4, payload: incompressible},
		{name: "zstd compressible", compression: Zstd, payload: compressible},
		{name: "zstd incompressible", compression: Zstd, payload: incompressible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, tt.compression, 0, tt.payload)
		})
	}
}

func TestRoundTrip_MultipleBlocks(t *testing.T) {
	// Tiny block size forces many blocks, including a short tail block.
	payload := bytes.Repeat([]byte("0123456789abcdef"), 100)
	for _, c := range []Compression{None, LZ4, Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			roundTrip(t, c, 64, payload)
		})
	}
}

func TestWriter_CompressionShrinksOutput(t *testing.T) {
	payload := bytes.Repeat([]byte{7}, 64*1024)

	var raw, packed bytes.Buffer

	w := NewWriter(&raw, None, 0)
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	wz := NewWriter(&packed, Zstd, 0)
	_, err = wz.Write(payload)
	require.NoError(t, err)
	require.NoError(t, wz.Flush())

	assert.Less(t, packed.Len(), raw.Len())
}

func TestReader_TruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LZ4, 0)
	_, err := w.Write(bytes.Repeat([]byte("ab"), 2048))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	truncated := buf.Bytes()[:buf.Len()/2]
	r := NewReader(bytes.NewReader(truncated), LZ4)
	_, err = io.ReadAll(r)
	require.Error(t, err)
}

func TestReader_CleanEOF(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Zstd, 0)
	_, err := w.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewReader(&buf, Zstd)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), got)
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "lz4", LZ4.String())
	assert.Equal(t, "zstd", Zstd.String())
	assert.True(t, Zstd.Valid())
	assert.False(t, Compression(9).Valid())
}

func TestChecksumRoundTrip(t *testing.T) {
	payload := []byte("integrity matters")

	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	_, err := cw.Write(payload)
	require.NoError(t, err)

	cr := NewChecksumReader(&buf)
	got, err := io.ReadAll(cr)
	require.NoError(t, err)

	assert.Equal(t, payload, got)
	assert.Equal(t, cw.Sum32(), cr.Sum32())
	assert.NotZero(t, cw.Sum32())
}
