package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec implements codec-L: the fast byte-level inner codec used as the
// dual-stack pipeline's outer stage.
type LZ4Codec struct{}

var (
	_ Codec             = (*LZ4Codec)(nil)
	_ SizedDecompressor = (*LZ4Codec)(nil)
)

// NewLZ4Codec creates a codec-L instance. LZ4 has no tunable level.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Uses a pooled lz4.Compressor for better performance.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	// Get compressor from pool
	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// maxGuessSize bounds the guess-and-grow search in Decompress. It's a flat
// memory-exhaustion safety limit, deliberately unrelated to
// chunked.ChunkSize: that package's chunks are themselves LZ4 payloads this
// method may be asked to decode, so a cap equal to the chunk size would
// make the largest valid chunk undecodable by construction. Comfortably
// above the largest chunk the chunked package will ever hand this codec.
const maxGuessSize = 4 * 1024 * 1024 * 1024 // 4GiB

// Decompress decompresses the input data using LZ4 decompression.
//
// Callers that know the exact uncompressed size (chunked framing records it
// per spec.md §4.2) should call DecompressSize instead, which allocates the
// destination buffer exactly once. This method exists for callers without
// that information and falls back to an adaptive buffer sizing strategy:
//  1. Start with a buffer 4x the compressed size (common expansion ratio)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size
//  3. Give up once the buffer reaches maxGuessSize
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	if bufSize > maxGuessSize {
		bufSize = maxGuessSize
	}

	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxGuessSize {
				bufSize *= 2
				if bufSize > maxGuessSize {
					bufSize = maxGuessSize
				}
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}
}

// DecompressSize decompresses data into a buffer sized exactly to size,
// avoiding Decompress's guess-and-grow search. size must be the exact
// uncompressed length; chunked framing records it for this reason.
func (c LZ4Codec) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
