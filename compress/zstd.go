package compress

import (
	"fmt"
	"sync"

	"github.com/EarthwebAP/glifzip/errs"
	"github.com/klauspost/compress/zstd"
)

// ZstdCodec implements codec-Z: the general-purpose entropy inner codec used
// as the compression-ratio stage of both pipeline modes.
//
// Unlike the teacher's fixed-speed encoder, level is caller-selectable across
// the standard Zstandard 1..22 range and mapped onto klauspost's internal
// speed tiers via zstd.EncoderLevelFromZstd.
type ZstdCodec struct {
	level zstd.EncoderLevel
}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a codec-Z instance at the given Zstandard level
// (1..22). Levels outside that range are rejected with errs.ErrInvalidInput.
func NewZstdCodec(level int) (*ZstdCodec, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("%w: zstd level %d out of range [1, 22]", errs.ErrInvalidInput, level)
	}

	return &ZstdCodec{level: zstd.EncoderLevelFromZstd(level)}, nil
}

// encoderPools caches one sync.Pool of warmed-up encoders per encoder level,
// since a klauspost encoder's level is fixed at construction time.
var (
	encoderPoolsMu sync.Mutex
	encoderPools   = map[zstd.EncoderLevel]*sync.Pool{}
)

func encoderPoolFor(level zstd.EncoderLevel) *sync.Pool {
	encoderPoolsMu.Lock()
	pool, ok := encoderPools[level]
	if !ok {
		pool = &sync.Pool{
			New: func() any {
				enc, err := zstd.NewWriter(nil,
					zstd.WithEncoderLevel(level),
					zstd.WithEncoderCRC(false),
				)
				if err != nil {
					panic(fmt.Sprintf("compress: failed to create zstd encoder: %v", err))
				}
				return enc
			},
		}
		encoderPools[level] = pool
	}
	encoderPoolsMu.Unlock()

	return pool
}

// zstdDecoderPool is shared across all levels: decoding doesn't need to know
// the level the data was compressed at.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd decoder: %v", err))
		}
		return dec
	},
}

// Compress compresses data with the codec's configured level, using a
// pooled, warmed-up encoder.
func (c *ZstdCodec) Compress(data []byte) ([]byte, error) {
	pool := encoderPoolFor(c.level)
	enc := pool.Get().(*zstd.Encoder)
	defer pool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstandard-compressed data.
func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
