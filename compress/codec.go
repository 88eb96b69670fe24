package compress

import (
	"fmt"

	"github.com/EarthwebAP/glifzip/format"
)

// Compressor compresses a single byte slice in one shot.
//
// Implementations are used both directly (single-stack pipeline, small
// payloads) and as the inner stage wrapped by the chunked package for
// parallel, chunk-at-a-time compression of large payloads.
type Compressor interface {
	// Compress compresses data and returns a newly allocated result.
	// The input slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor mirrors Compressor for the decompression direction.
type Decompressor interface {
	// Decompress decompresses data and returns a newly allocated result.
	// The input slice is not modified.
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is an optional capability for codecs whose wire format
// doesn't self-describe the uncompressed length (codec-L's raw LZ4 blocks).
// Callers that already know the exact uncompressed size from elsewhere
// (chunked framing) should prefer this over Decompress to avoid a
// guess-and-grow buffer search.
type SizedDecompressor interface {
	// DecompressSize decompresses data into a buffer sized exactly to size.
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the given inner
// compression type at the given level. level is ignored by codecs that don't
// expose a tunable level (LZ4).
func CreateCodec(compressionType format.CompressionType, level int, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCodec(level)
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}
