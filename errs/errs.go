// Package errs defines the sentinel errors returned by the glifzip core.
//
// Every error kind in the container/codec/archive pipeline reduces to one of
// these sentinels so callers can classify failures with errors.Is instead of
// parsing strings. Call sites wrap a sentinel with fmt.Errorf("%w: ...", ...)
// to attach the detail that caused it.
package errs

import "errors"

var (
	// ErrBadMagic means the container's leading magic bytes don't match "GLIF01".
	ErrBadMagic = errors.New("glifzip: bad magic")
	// ErrUnsupportedVersion means the container declares a version this build doesn't know.
	ErrUnsupportedVersion = errors.New("glifzip: unsupported version")
	// ErrHeaderCorrupt means the header's Adler-32 self-checksum didn't match,
	// or the header buffer wasn't exactly the fixed header size.
	ErrHeaderCorrupt = errors.New("glifzip: header checksum mismatch")
	// ErrManifestTooLarge means a manifest's length prefix exceeds the 100 MiB safety clamp.
	ErrManifestTooLarge = errors.New("glifzip: manifest too large")
	// ErrInvalidManifest means the manifest JSON was malformed or violated a structural invariant.
	ErrInvalidManifest = errors.New("glifzip: invalid manifest")
	// ErrCodecError means an inner codec reported a failure.
	ErrCodecError = errors.New("glifzip: codec error")
	// ErrDigestMismatch means a computed digest didn't match the stored one.
	ErrDigestMismatch = errors.New("glifzip: digest mismatch")
	// ErrSizeMismatch means the decompressed payload length didn't match the header's payload_size.
	ErrSizeMismatch = errors.New("glifzip: size mismatch")
	// ErrTruncatedPayload means an entry's (offset, size) falls outside the
	// payload, or a container is too short to hold its header or sidecar.
	ErrTruncatedPayload = errors.New("glifzip: truncated payload")
	// ErrIntegrityMismatch means a regular entry's recomputed SHA-256 didn't match its stored digest.
	ErrIntegrityMismatch = errors.New("glifzip: integrity mismatch")
	// ErrInvalidInput means a caller supplied a malformed argument (bad hex, bad glob, etc).
	ErrInvalidInput = errors.New("glifzip: invalid input")
	// ErrIoError means an underlying filesystem operation (stat, read, write, symlink) failed.
	ErrIoError = errors.New("glifzip: io error")
)
