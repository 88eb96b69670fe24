package container

import (
	"fmt"
	"runtime"
	"time"

	json "github.com/goccy/go-json"

	"github.com/EarthwebAP/glifzip/digest"
	"github.com/EarthwebAP/glifzip/errs"
)

// Sidecar is the human-readable JSON block following a Header, describing
// the archive's payload, codec choice, integrity digests, and provenance.
type Sidecar struct {
	Format       string          `json:"format"`
	Payload      PayloadInfo     `json:"payload"`
	Archive      ArchiveInfo     `json:"archive"`
	Cryptography CryptoInfo      `json:"cryptography"`
	Metadata     MetadataInfo    `json:"metadata"`
}

// PayloadInfo describes the uncompressed payload bytes.
type PayloadInfo struct {
	Size             uint64  `json:"size"`
	Hash             string  `json:"hash"`
	CompressionRatio float32 `json:"compression_ratio"`
	Files            *uint64 `json:"files,omitempty"`
	Directories      *uint64 `json:"directories,omitempty"`
}

// ArchiveInfo describes the compressed, on-disk archive bytes.
type ArchiveInfo struct {
	Size             uint64 `json:"size"`
	Hash             string `json:"hash"`
	CompressedWith   string `json:"compressed_with"`
	DecompressedWith string `json:"decompressed_with"`
	CompressionLevel uint32 `json:"compression_level"`
	Threads          uint32 `json:"threads"`
}

// CryptoInfo records the integrity algorithm and the two digests it bound.
type CryptoInfo struct {
	Algorithm     string  `json:"algorithm"`
	PayloadDigest string  `json:"payload_digest"`
	ArchiveDigest string  `json:"archive_digest"`
	Signature     *string `json:"signature,omitempty"`
}

// MetadataInfo records provenance: when and where the archive was built.
type MetadataInfo struct {
	Created             string `json:"created"`
	Creator             string `json:"creator"`
	SourcePlatform      string `json:"source_platform"`
	SourceArchitecture  string `json:"source_architecture"`
	Deterministic       bool   `json:"deterministic"`
}

// NewSidecar builds a Sidecar for the given payload/archive digests and
// codec settings, stamped with the current time and host platform.
//
// The DecompressedWith field's naming ("decompressed_with") is preserved from the format this
// container type inherited despite being the field that actually names which
// codec undoes the outer stage, not overall decompression.
func NewSidecar(payloadSize, archiveSize uint64, payloadHash, archiveHash digest.Digest, level int, threads int, mode CodecMode, deterministic bool) Sidecar {
	var ratio float32
	if payloadSize > 0 {
		ratio = float32(archiveSize) / float32(payloadSize)
	}

	decompressedWith := "zstd"
	if mode == CodecModeDualStack {
		decompressedWith = "lz4"
	}

	return Sidecar{
		Format: "glif/1.0",
		Payload: PayloadInfo{
			Size:             payloadSize,
			Hash:             "sha256:" + payloadHash.Hex(),
			CompressionRatio: ratio,
		},
		Archive: ArchiveInfo{
			Size:             archiveSize,
			Hash:             "sha256:" + archiveHash.Hex(),
			CompressedWith:   "zstd",
			DecompressedWith: decompressedWith,
			CompressionLevel: uint32(level),
			Threads:          uint32(threads),
		},
		Cryptography: CryptoInfo{
			Algorithm:     "sha256",
			PayloadDigest: payloadHash.Hex(),
			ArchiveDigest: archiveHash.Hex(),
		},
		Metadata: MetadataInfo{
			Created:            time.Now().UTC().Format(time.RFC3339),
			Creator:            "glifzip v1.0",
			SourcePlatform:     runtime.GOOS,
			SourceArchitecture: runtime.GOARCH,
			Deterministic:      deterministic,
		},
	}
}

// MarshalJSONIndent serializes the sidecar to pretty-printed JSON.
func (s Sidecar) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ParseSidecar decodes a JSON sidecar block.
func ParseSidecar(data []byte) (Sidecar, error) {
	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return Sidecar{}, fmt.Errorf("%w: sidecar json: %s", errs.ErrInvalidManifest, err)
	}

	return s, nil
}
