// Package pipeline assembles the compress and chunked packages into the
// two GLIF codec pipelines (dual-stack and single-stack) and frames the
// result with a container.Header and container.Sidecar.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/EarthwebAP/glifzip/chunked"
	"github.com/EarthwebAP/glifzip/compress"
	"github.com/EarthwebAP/glifzip/container"
	"github.com/EarthwebAP/glifzip/digest"
	"github.com/EarthwebAP/glifzip/errs"
)

// Config selects the codec pipeline and its tuning knobs.
type Config struct {
	// Level is the Zstandard level used by codec-Z, 1..22.
	Level int
	// Threads bounds the chunked codec's worker pool.
	Threads int
	// DualStack selects codec-Z wrapped by codec-L (favors decode speed)
	// over codec-Z alone (favors compression ratio).
	DualStack bool
	// Deterministic replaces wall-clock timestamps with a fixed stamp, so
	// compressing the same input twice produces byte-identical output.
	Deterministic bool
}

// deterministicTimestamp is stamped into headers when Config.Deterministic
// is set, so two runs over identical input produce byte-identical archives.
// Sidecars get deterministicSidecarTime instead.
const deterministicTimestamp = 0

const deterministicSidecarTime = "2026-01-01T00:00:00Z"

// Fast favors speed over ratio: low Zstd level, dual-stack (LZ4 outer).
func Fast() Config {
	return Config{Level: 3, Threads: runtime.GOMAXPROCS(0), DualStack: true, Deterministic: true}
}

// Balanced is the default tradeoff.
func Balanced() Config {
	return Config{Level: 8, Threads: runtime.GOMAXPROCS(0), DualStack: true, Deterministic: true}
}

// HighCompression favors ratio over speed: high Zstd level, single-stack.
func HighCompression() Config {
	return Config{Level: 16, Threads: runtime.GOMAXPROCS(0), DualStack: false, Deterministic: true}
}

// Compress compresses data into a complete GLIF container: header, sidecar,
// and the compressed archive bytes.
func Compress(ctx context.Context, data []byte, cfg Config) ([]byte, error) {
	payloadHash := digest.Compute(data)

	zCodec, err := compress.NewZstdCodec(cfg.Level)
	if err != nil {
		return nil, err
	}
	zChunked := chunked.New(zCodec, cfg.Threads, false)

	archiveData, err := zChunked.Compress(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: codec-z stage: %s", errs.ErrCodecError, err)
	}

	mode := container.CodecModeSingleStack
	if cfg.DualStack {
		lCodec := compress.NewLZ4Codec()
		lChunked := chunked.New(lCodec, cfg.Threads, true)

		archiveData, err = lChunked.Compress(ctx, archiveData)
		if err != nil {
			return nil, fmt.Errorf("%w: codec-l stage: %s", errs.ErrCodecError, err)
		}
		mode = container.CodecModeDualStack
	}

	archiveHash := digest.Compute(archiveData)

	sidecar := container.NewSidecar(uint64(len(data)), uint64(len(archiveData)), payloadHash, archiveHash, cfg.Level, cfg.Threads, mode, cfg.Deterministic)
	if cfg.Deterministic {
		sidecar.Metadata.Created = deterministicSidecarTime
	}

	sidecarJSON, err := sidecar.MarshalJSONIndent()
	if err != nil {
		return nil, err
	}

	var header container.Header
	if cfg.Deterministic {
		header = container.NewDeterministic(uint64(len(data)), uint64(len(archiveData)), payloadHash, archiveHash, uint32(cfg.Level), mode, uint32(cfg.Threads), uint16(len(sidecarJSON)), deterministicTimestamp)
	} else {
		header = container.New(uint64(len(data)), uint64(len(archiveData)), payloadHash, archiveHash, uint32(cfg.Level), mode, uint32(cfg.Threads), uint16(len(sidecarJSON)))
	}

	out := make([]byte, 0, container.HeaderSize+len(sidecarJSON)+len(archiveData))
	out = append(out, header.Bytes()...)
	out = append(out, sidecarJSON...)
	out = append(out, archiveData...)

	return out, nil
}

// Decompress reverses Compress, verifying the archive and payload digests
// and the declared payload size.
func Decompress(ctx context.Context, data []byte, threads int) ([]byte, error) {
	header, archiveData, _, err := splitContainer(data)
	if err != nil {
		return nil, err
	}

	if err := digest.Verify(archiveData, header.ArchiveHash); err != nil {
		return nil, err
	}

	decompressed, err := decodeArchive(ctx, archiveData, header.CodecMode, threads)
	if err != nil {
		return nil, err
	}

	if err := digest.Verify(decompressed, header.PayloadHash); err != nil {
		return nil, err
	}

	if uint64(len(decompressed)) != header.PayloadSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrSizeMismatch, header.PayloadSize, len(decompressed))
	}

	return decompressed, nil
}

// VerifyArchive checks the archive's integrity without decompressing its
// payload, returning the parsed sidecar for inspection.
func VerifyArchive(data []byte) (container.Sidecar, error) {
	header, archiveData, sidecarJSON, err := splitContainer(data)
	if err != nil {
		return container.Sidecar{}, err
	}

	if err := digest.Verify(archiveData, header.ArchiveHash); err != nil {
		return container.Sidecar{}, err
	}

	return container.ParseSidecar(sidecarJSON)
}

func splitContainer(data []byte) (container.Header, []byte, []byte, error) {
	if len(data) < container.HeaderSize {
		return container.Header{}, nil, nil, fmt.Errorf("%w: container shorter than header", errs.ErrTruncatedPayload)
	}

	header, err := container.Parse(data[:container.HeaderSize])
	if err != nil {
		return container.Header{}, nil, nil, err
	}

	sidecarEnd := container.HeaderSize + int(header.SidecarSize)
	if sidecarEnd > len(data) {
		return container.Header{}, nil, nil, fmt.Errorf("%w: truncated sidecar", errs.ErrTruncatedPayload)
	}

	return header, data[sidecarEnd:], data[container.HeaderSize:sidecarEnd], nil
}

func decodeArchive(ctx context.Context, archiveData []byte, mode container.CodecMode, threads int) ([]byte, error) {
	zCodec, err := compress.NewZstdCodec(1) // level is irrelevant for decode
	if err != nil {
		return nil, err
	}

	zChunked := chunked.New(zCodec, threads, false)

	if mode == container.CodecModeDualStack {
		lChunked := chunked.New(compress.NewLZ4Codec(), threads, true)

		zCompressed, err := lChunked.Decompress(ctx, archiveData)
		if err != nil {
			return nil, fmt.Errorf("%w: codec-l stage: %s", errs.ErrCodecError, err)
		}

		decompressed, err := zChunked.Decompress(ctx, zCompressed)
		if err != nil {
			return nil, fmt.Errorf("%w: codec-z stage: %s", errs.ErrCodecError, err)
		}

		return decompressed, nil
	}

	decompressed, err := zChunked.Decompress(ctx, archiveData)
	if err != nil {
		return nil, fmt.Errorf("%w: codec-z stage: %s", errs.ErrCodecError, err)
	}

	return decompressed, nil
}
