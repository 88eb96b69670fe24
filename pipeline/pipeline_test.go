package pipeline_test

import (
	"context"
	"testing"

	"github.com/EarthwebAP/glifzip/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualStackRoundTrip(t *testing.T) {
	cfg := pipeline.Fast()
	data := []byte("Hello, GLifzip! This is a test of the compression system.")

	archive, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)

	decompressed, err := pipeline.Decompress(context.Background(), archive, cfg.Threads)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestSingleStackRoundTrip(t *testing.T) {
	cfg := pipeline.HighCompression()
	data := []byte("Hello, GLifzip! Single-stack mode test.")

	archive, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)

	decompressed, err := pipeline.Decompress(context.Background(), archive, cfg.Threads)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)
}

func TestDeterministicCompression(t *testing.T) {
	cfg := pipeline.Balanced()
	data := make([]byte, 10_000)
	for i := range data {
		data[i] = 42
	}

	r1, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)
	r2, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)

	assert.Equal(t, r1, r2, "compression should be deterministic")
}

func TestVerifyArchive(t *testing.T) {
	cfg := pipeline.Balanced()
	data := []byte("Test data for archive verification")

	archive, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)

	sidecar, err := pipeline.VerifyArchive(archive)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(data)), sidecar.Payload.Size)
}

func TestDecompressDetectsTamperedArchive(t *testing.T) {
	cfg := pipeline.Balanced()
	data := []byte("Tamper-evident data")

	archive, err := pipeline.Compress(context.Background(), data, cfg)
	require.NoError(t, err)

	archive[len(archive)-1] ^= 0xff

	_, err = pipeline.Decompress(context.Background(), archive, cfg.Threads)
	require.Error(t, err)
}
