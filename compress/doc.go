// Package compress implements the two inner codecs GLIF containers stack:
// codec-Z, a general-purpose entropy compressor (Zstandard), and codec-L, a
// fast byte-level compressor (LZ4 block format). Both satisfy the same
// Codec interface so the chunked and pipeline packages can treat them
// uniformly.
//
// Codec-Z targets compression ratio (used as the inner stage in both the
// single-stack and dual-stack pipelines); codec-L targets decode speed on
// already-compressed data (used only as the dual-stack's outer stage).
package compress
