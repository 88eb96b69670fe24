// Package chunked wraps a compress.Codec to compress and decompress large
// payloads chunk-at-a-time across a bounded worker pool, so a single big
// payload doesn't serialize behind one goroutine.
//
// Framing differs by inner codec because the two codecs need different
// decode-time hints: codec-Z's decoder recovers each chunk's uncompressed
// size from the zstd frame itself, so only chunk lengths are recorded;
// codec-L's decoder needs the uncompressed chunk size told to it up front.
package chunked

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/EarthwebAP/glifzip/compress"
	"github.com/EarthwebAP/glifzip/errs"
	"github.com/EarthwebAP/glifzip/internal/pool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ChunkSize is the fixed split point for parallel chunked compression.
const ChunkSize = 128 * 1024 * 1024

// DefaultWorkers bounds the worker pool when the caller doesn't specify one.
const DefaultWorkers = 4

// Codec wraps an inner compress.Codec with chunked, parallel framing.
type Codec struct {
	inner   compress.Codec
	workers int
	isLZ4   bool
}

// New wraps inner with chunked framing. isLZ4 selects the framing variant:
// LZ4 chunks carry an explicit uncompressed-size hint, Zstd chunks don't need
// one since the frame header self-describes it.
func New(inner compress.Codec, workers int, isLZ4 bool) *Codec {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Codec{inner: inner, workers: workers, isLZ4: isLZ4}
}

// Compress splits data into ChunkSize pieces and compresses them in
// parallel, or compresses data in one shot when it fits in a single chunk or
// the pool has only one worker.
func (c *Codec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) <= ChunkSize || c.workers <= 1 {
		return c.inner.Compress(data)
	}

	chunks := splitChunks(data, ChunkSize)
	compressed, err := c.runParallel(ctx, chunks, func(_ int, chunk []byte) ([]byte, error) {
		return c.inner.Compress(chunk)
	})
	if err != nil {
		return nil, err
	}

	return frame(compressed, len(data), c.isLZ4), nil
}

// Decompress reverses Compress. Data that doesn't parse as chunked framing
// (single-shot payloads, or payloads from a workers<=1 compress call) falls
// back to a single-shot decode of the whole input.
func (c *Codec) Decompress(ctx context.Context, data []byte) ([]byte, error) {
	chunks, uncompressedSizes, ok := parseFrame(data, c.isLZ4)
	if !ok || c.workers <= 1 {
		return c.inner.Decompress(data)
	}

	sized, hasSizeHint := c.inner.(compress.SizedDecompressor)

	decompressed, err := c.runParallel(ctx, chunks, func(i int, chunk []byte) ([]byte, error) {
		if hasSizeHint && uncompressedSizes != nil {
			return sized.DecompressSize(chunk, uncompressedSizes[i])
		}

		return c.inner.Decompress(chunk)
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, sz := range uncompressedSizes {
		total += sz
	}

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)
	buf.ExtendOrGrow(total)
	buf.SetLength(0)

	for _, d := range decompressed {
		buf.MustWrite(d)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

func (c *Codec) runParallel(ctx context.Context, chunks [][]byte, fn func(int, []byte) ([]byte, error)) ([][]byte, error) {
	sem := semaphore.NewWeighted(int64(c.workers))
	results := make([][]byte, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			out, err := fn(i, chunk)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %s", errs.ErrCodecError, i, err)
			}
			results[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func splitChunks(data []byte, size int) [][]byte {
	var chunks [][]byte
	for offset := 0; offset < len(data); offset += size {
		end := offset + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[offset:end])
	}

	return chunks
}

// frame builds the codec-Z or codec-L multi-chunk wire format.
//
// codec-Z:  u32 numChunks, then per chunk: u64 chunkLen, bytes.
// codec-L:  u32 numChunks, u64 chunkSize, u64 totalUncompressed, then per
// chunk: u64 chunkLen, bytes.
func frame(compressedChunks [][]byte, totalUncompressed int, isLZ4 bool) []byte {
	var out []byte

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(compressedChunks)))
	out = append(out, header...)

	if isLZ4 {
		meta := make([]byte, 16)
		binary.BigEndian.PutUint64(meta[0:8], uint64(ChunkSize))
		binary.BigEndian.PutUint64(meta[8:16], uint64(totalUncompressed))
		out = append(out, meta...)
	}

	for _, chunk := range compressedChunks {
		lenBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(lenBuf, uint64(len(chunk)))
		out = append(out, lenBuf...)
		out = append(out, chunk...)
	}

	return out
}

// parseFrame reverses frame. ok is false when data doesn't parse as chunked
// framing, signaling the caller to fall back to a single-shot decode.
func parseFrame(data []byte, isLZ4 bool) (chunks [][]byte, uncompressedSizes []int, ok bool) {
	if len(data) < 4 {
		return nil, nil, false
	}

	numChunks := int(binary.BigEndian.Uint32(data[0:4]))
	if numChunks == 0 {
		return nil, nil, false
	}

	offset := 4

	var chunkSize, totalSize int
	if isLZ4 {
		if len(data) < offset+16 {
			return nil, nil, false
		}
		chunkSize = int(binary.BigEndian.Uint64(data[offset : offset+8]))
		totalSize = int(binary.BigEndian.Uint64(data[offset+8 : offset+16]))
		offset += 16
	}

	for i := 0; i < numChunks; i++ {
		if offset+8 > len(data) {
			return nil, nil, false
		}
		chunkLen := int(binary.BigEndian.Uint64(data[offset : offset+8]))
		offset += 8

		if offset+chunkLen > len(data) {
			return nil, nil, false
		}
		chunks = append(chunks, data[offset:offset+chunkLen])
		offset += chunkLen

		if isLZ4 {
			uncompressedSize := chunkSize
			if i == numChunks-1 {
				uncompressedSize = totalSize - i*chunkSize
			}
			uncompressedSizes = append(uncompressedSizes, uncompressedSize)
		}
	}

	return chunks, uncompressedSizes, true
}
