package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/EarthwebAP/glifzip/digest"
	"github.com/EarthwebAP/glifzip/errs"
)

// FileType identifies what kind of filesystem object an Entry describes.
type FileType uint8

const (
	// FileTypeRegular is an ordinary file, with content in the payload blob.
	FileTypeRegular FileType = iota
	// FileTypeDirectory is a directory; it carries no payload bytes.
	FileTypeDirectory
	// FileTypeSymlink is a symbolic link; its target is stored inline, not in the payload.
	FileTypeSymlink
)

func (t FileType) String() string {
	switch t {
	case FileTypeRegular:
		return "f"
	case FileTypeDirectory:
		return "d"
	case FileTypeSymlink:
		return "l"
	default:
		return "?"
	}
}

// Entry describes one filesystem object archived into a GLIF directory
// container, with enough metadata to restore it byte-for-byte and
// permission-for-permission.
type Entry struct {
	Path          string    `json:"path"`
	Type          FileType  `json:"file_type"`
	Size          uint64    `json:"size"`
	Mode          uint32    `json:"mode"`
	UID           uint32    `json:"uid"`
	GID           uint32    `json:"gid"`
	ModTime       time.Time `json:"mtime"`
	AccessTime    time.Time `json:"atime"`
	SymlinkTarget string    `json:"symlink_target,omitempty"`
	DataOffset    uint64    `json:"data_offset"`
	SHA256        string    `json:"sha256,omitempty"`
}

// FromPath builds an Entry from an on-disk file, recording relativePath as
// its path within the archive. dataOffset is the entry's byte offset within
// the archive's linearized payload, recorded as given for every entry type
// (archiver.Build passes the current payload offset); content
// is the already-read file content for regular files, used to compute
// SHA256, or nil otherwise.
func FromPath(path, relativePath string, dataOffset uint64, content []byte) (Entry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: stat %s: %s", errs.ErrIoError, path, err)
	}

	entry := Entry{
		Path:       filepath.ToSlash(relativePath),
		Mode:       uint32(info.Mode().Perm()),
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
		DataOffset: dataOffset,
	}
	entry.UID, entry.GID = ownerIDs(info)

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		entry.Type = FileTypeSymlink
		target, err := os.Readlink(path)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: readlink %s: %s", errs.ErrIoError, path, err)
		}
		entry.SymlinkTarget = target
	case info.IsDir():
		entry.Type = FileTypeDirectory
	default:
		entry.Type = FileTypeRegular
		entry.Size = uint64(info.Size())
		entry.SHA256 = digest.Compute(content).Hex()
	}

	return entry, nil
}

// RestoreMetadata applies the entry's permissions and timestamps to path.
// Ownership restoration is skipped; it requires privileges this library
// doesn't assume it has.
func (e Entry) RestoreMetadata(path string) error {
	if e.Type != FileTypeSymlink {
		if err := os.Chmod(path, os.FileMode(e.Mode)); err != nil {
			return fmt.Errorf("%w: chmod %s: %s", errs.ErrIoError, path, err)
		}
	}

	if err := os.Chtimes(path, e.AccessTime, e.ModTime); err != nil {
		return fmt.Errorf("%w: chtimes %s: %s", errs.ErrIoError, path, err)
	}

	return nil
}

// VerifyIntegrity recomputes the SHA-256 of data and compares it to the
// entry's stored digest. Non-regular entries always pass, since they carry
// no payload bytes.
func (e Entry) VerifyIntegrity(data []byte) error {
	if e.Type != FileTypeRegular {
		return nil
	}

	got := digest.Compute(data).Hex()
	if got != e.SHA256 {
		return fmt.Errorf("%w: %s: expected %s, got %s", errs.ErrIntegrityMismatch, e.Path, e.SHA256, got)
	}

	return nil
}
