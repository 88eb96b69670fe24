package compress

// NoOpCompressor passes data through unchanged.
//
// It exists for testing the chunked and pipeline packages without paying for
// real compression, and as the codec assigned to format.CompressionNone.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged.
//
// The returned slice shares the input's backing array; callers must not
// mutate data after calling this if they retain the result.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
