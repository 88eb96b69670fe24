// Package format holds the small enumerations shared by the compress,
// chunked, and container packages: which inner codec produced a given
// byte stream.
package format

// CompressionType identifies which inner codec compressed a byte stream.
type CompressionType uint8

const (
	// CompressionNone represents uncompressed bytes.
	CompressionNone CompressionType = 0x1
	// CompressionZstd represents codec-Z (Zstandard family) output.
	CompressionZstd CompressionType = 0x2
	// CompressionLZ4 represents codec-L (LZ4 block format) output.
	CompressionLZ4 CompressionType = 0x4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
