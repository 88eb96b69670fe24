// Package container implements the GLIF container's fixed-size binary
// header and its JSON sidecar.
package container

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"time"

	"github.com/EarthwebAP/glifzip/digest"
	"github.com/EarthwebAP/glifzip/errs"
)

// Magic identifies a GLIF container. It never changes across versions; a
// version bump changes Version instead.
var Magic = [6]byte{'G', 'L', 'I', 'F', '0', '1'}

// Version is the container format version this build writes and accepts.
const Version uint32 = 0x00000100 // v1.0

// HeaderSize is the fixed, on-disk byte length of a Header.
const HeaderSize = 116

// CodecMode records which codec pipeline produced the payload.
type CodecMode uint32

const (
	// CodecModeDualStack means codec-Z inner, codec-L outer (decode speed favored).
	CodecModeDualStack CodecMode = 0
	// CodecModeSingleStack means codec-Z only (compression ratio favored).
	CodecModeSingleStack CodecMode = 1
)

// Header is the 116-byte fixed layout at the start of every GLIF container:
//
//	magic(6) version(4) payload_size(8) archive_size(8) payload_hash(32)
//	archive_hash(32) compression_level(4) codec_mode(4) cores_used(4)
//	timestamp(8) checksum(4) sidecar_size(2)
type Header struct {
	PayloadSize      uint64
	ArchiveSize      uint64
	PayloadHash      digest.Digest
	ArchiveHash      digest.Digest
	CompressionLevel uint32
	CodecMode        CodecMode
	CoresUsed        uint32
	Timestamp        uint64
	SidecarSize      uint16
}

// New builds a Header stamped with the current time. Use NewDeterministic
// for reproducible archives.
func New(payloadSize, archiveSize uint64, payloadHash, archiveHash digest.Digest, level uint32, mode CodecMode, cores uint32, sidecarSize uint16) Header {
	return NewDeterministic(payloadSize, archiveSize, payloadHash, archiveHash, level, mode, cores, sidecarSize, uint64(time.Now().Unix()))
}

// NewDeterministic builds a Header with an explicit timestamp, used by
// deterministic-mode archiving to produce byte-identical output for
// identical input.
func NewDeterministic(payloadSize, archiveSize uint64, payloadHash, archiveHash digest.Digest, level uint32, mode CodecMode, cores uint32, sidecarSize uint16, timestamp uint64) Header {
	return Header{
		PayloadSize:      payloadSize,
		ArchiveSize:      archiveSize,
		PayloadHash:      payloadHash,
		ArchiveHash:      archiveHash,
		CompressionLevel: level,
		CodecMode:        mode,
		CoresUsed:        cores,
		Timestamp:        timestamp,
		SidecarSize:      sidecarSize,
	}
}

// Bytes serializes h into a new 116-byte big-endian buffer, including its
// self-checksum.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:6], Magic[:])
	binary.BigEndian.PutUint32(buf[6:10], Version)
	binary.BigEndian.PutUint64(buf[10:18], h.PayloadSize)
	binary.BigEndian.PutUint64(buf[18:26], h.ArchiveSize)
	copy(buf[26:58], h.PayloadHash[:])
	copy(buf[58:90], h.ArchiveHash[:])
	binary.BigEndian.PutUint32(buf[90:94], h.CompressionLevel)
	binary.BigEndian.PutUint32(buf[94:98], uint32(h.CodecMode))
	binary.BigEndian.PutUint32(buf[98:102], h.CoresUsed)
	binary.BigEndian.PutUint64(buf[102:110], h.Timestamp)
	binary.BigEndian.PutUint32(buf[110:114], h.checksum())
	binary.BigEndian.PutUint16(buf[114:116], h.SidecarSize)

	return buf
}

// Parse decodes a 116-byte buffer into a Header, validating the magic,
// version, and self-checksum.
func Parse(data []byte) (Header, error) {
	if len(data) != HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", errs.ErrHeaderCorrupt, len(data), HeaderSize)
	}

	if string(data[0:6]) != string(Magic[:]) {
		return Header{}, fmt.Errorf("%w: got %q", errs.ErrBadMagic, data[0:6])
	}

	version := binary.BigEndian.Uint32(data[6:10])
	if version != Version {
		return Header{}, fmt.Errorf("%w: got 0x%08x, want 0x%08x", errs.ErrUnsupportedVersion, version, Version)
	}

	h := Header{
		PayloadSize:      binary.BigEndian.Uint64(data[10:18]),
		ArchiveSize:      binary.BigEndian.Uint64(data[18:26]),
		CompressionLevel: binary.BigEndian.Uint32(data[90:94]),
		CodecMode:        CodecMode(binary.BigEndian.Uint32(data[94:98])),
		CoresUsed:        binary.BigEndian.Uint32(data[98:102]),
		Timestamp:        binary.BigEndian.Uint64(data[102:110]),
		SidecarSize:      binary.BigEndian.Uint16(data[114:116]),
	}
	copy(h.PayloadHash[:], data[26:58])
	copy(h.ArchiveHash[:], data[58:90])

	storedChecksum := binary.BigEndian.Uint32(data[110:114])
	if h.checksum() != storedChecksum {
		return Header{}, errs.ErrHeaderCorrupt
	}

	return h, nil
}

// checksum computes the Adler-32 self-checksum over the header fields at
// offsets 10..110 (payload_size through timestamp); magic, version, the
// checksum slot and sidecar_size are not covered.
func (h Header) checksum() uint32 {
	buf := make([]byte, 0, HeaderSize-len(Magic)-4-4-2)
	var tmp [8]byte

	binary.BigEndian.PutUint64(tmp[:], h.PayloadSize)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], h.ArchiveSize)
	buf = append(buf, tmp[:]...)
	buf = append(buf, h.PayloadHash[:]...)
	buf = append(buf, h.ArchiveHash[:]...)

	var tmp4 [4]byte
	binary.BigEndian.PutUint32(tmp4[:], h.CompressionLevel)
	buf = append(buf, tmp4[:]...)
	binary.BigEndian.PutUint32(tmp4[:], uint32(h.CodecMode))
	buf = append(buf, tmp4[:]...)
	binary.BigEndian.PutUint32(tmp4[:], h.CoresUsed)
	buf = append(buf, tmp4[:]...)

	binary.BigEndian.PutUint64(tmp[:], h.Timestamp)
	buf = append(buf, tmp[:]...)

	return adler32.Checksum(buf)
}
