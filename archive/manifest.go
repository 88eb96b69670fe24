package archive

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/EarthwebAP/glifzip/errs"
)

// ManifestVersion is the version of the manifest JSON schema.
const ManifestVersion = 1

// MaxManifestSize bounds how large a manifest's length-prefixed JSON block
// may be before ReadManifest refuses it.
const MaxManifestSize = 100 * 1024 * 1024

// Manifest is the TAR-like index of every entry archived into a directory
// container: what's there, where its bytes live in the payload blob, and who
// built the archive.
type Manifest struct {
	Version       uint32    `json:"version"`
	FileCount     int       `json:"file_count"`
	TotalSize     uint64    `json:"total_size"`
	Entries       []Entry   `json:"entries"`
	CreatedAt     string    `json:"created_at"`
	Creator       string    `json:"creator"`
	BaseDirectory string    `json:"base_directory"`
}

// NewManifest creates an empty manifest for baseDirectory, stamped with the
// current time and the local hostname.
func NewManifest(baseDirectory string) Manifest {
	return NewManifestDeterministic(baseDirectory, time.Now().UTC().Format(time.RFC3339), hostname())
}

// NewManifestDeterministic creates an empty manifest with explicit
// created/creator fields, for reproducible archive output.
func NewManifestDeterministic(baseDirectory, createdAt, creator string) Manifest {
	return Manifest{
		Version:       ManifestVersion,
		BaseDirectory: baseDirectory,
		CreatedAt:     createdAt,
		Creator:       creator,
	}
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}

	return "unknown"
}

// AddEntry appends entry to the manifest and folds its size into the running total.
func (m *Manifest) AddEntry(entry Entry) {
	m.TotalSize += entry.Size
	m.FileCount++
	m.Entries = append(m.Entries, entry)
}

// ToJSON serializes the manifest to pretty-printed JSON.
func (m Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ManifestFromJSON deserializes a manifest from JSON bytes.
func ManifestFromJSON(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest json: %s", errs.ErrInvalidManifest, err)
	}

	return m, nil
}

// WriteTo serializes the manifest as an 8-byte big-endian length prefix
// followed by its JSON body.
func (m Manifest) WriteTo(buf []byte) ([]byte, error) {
	encoded, err := m.ToJSON()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 8, 8+len(encoded))
	binary.BigEndian.PutUint64(out, uint64(len(encoded)))
	out = append(out, encoded...)

	return append(buf, out...), nil
}

// ReadManifest parses a length-prefixed manifest block from the start of
// data, returning the manifest and the number of bytes it consumed.
func ReadManifest(data []byte) (Manifest, int, error) {
	if len(data) < 8 {
		return Manifest{}, 0, fmt.Errorf("%w: truncated manifest length prefix", errs.ErrInvalidManifest)
	}

	size := binary.BigEndian.Uint64(data[0:8])
	if size > MaxManifestSize {
		return Manifest{}, 0, fmt.Errorf("%w: %d bytes exceeds %d byte cap", errs.ErrManifestTooLarge, size, MaxManifestSize)
	}

	end := 8 + int(size)
	if end > len(data) {
		return Manifest{}, 0, fmt.Errorf("%w: truncated manifest body", errs.ErrInvalidManifest)
	}

	m, err := ManifestFromJSON(data[8:end])
	if err != nil {
		return Manifest{}, 0, err
	}

	return m, end, nil
}

// FindEntry returns the entry at path, if any.
func (m Manifest) FindEntry(path string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Path == path {
			return e, true
		}
	}

	return Entry{}, false
}

// SortedEntries returns the manifest's entries ordered by path.
func (m Manifest) SortedEntries() []Entry {
	sorted := make([]Entry, len(m.Entries))
	copy(sorted, m.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	return sorted
}

// ListFiles renders each entry as a single "type size path" line, in the
// style of `tar -tv`.
func (m Manifest) ListFiles() []string {
	lines := make([]string, 0, len(m.Entries))
	for _, e := range m.SortedEntries() {
		lines = append(lines, fmt.Sprintf("%s %10d %s", e.Type, e.Size, e.Path))
	}

	return lines
}

// CompressionRatio returns compressedSize as a percentage of the manifest's
// total uncompressed size.
func (m Manifest) CompressionRatio(compressedSize uint64) float64 {
	if m.TotalSize == 0 {
		return 0
	}

	return (float64(compressedSize) / float64(m.TotalSize)) * 100
}
