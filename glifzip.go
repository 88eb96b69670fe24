// Package glifzip implements the GLIF container format: a content-addressed,
// parallel-codec compression container with an optional directory archiver
// built on top of it.
//
// Fast, Balanced, and HighCompression return the three Config
// presets most callers reach for; build a custom pipeline.Config directly
// for anything else.
package glifzip

import (
	"context"
	"fmt"
	"os"

	"github.com/EarthwebAP/glifzip/archive"
	"github.com/EarthwebAP/glifzip/archiver"
	"github.com/EarthwebAP/glifzip/container"
	"github.com/EarthwebAP/glifzip/errs"
	"github.com/EarthwebAP/glifzip/pipeline"
)

// Config is re-exported from pipeline so callers don't need a second import
// for the common path.
type Config = pipeline.Config

// Fast favors speed over compression ratio.
func Fast() Config { return pipeline.Fast() }

// Balanced is the default tradeoff between speed and ratio.
func Balanced() Config { return pipeline.Balanced() }

// HighCompression favors compression ratio over speed.
func HighCompression() Config { return pipeline.HighCompression() }

// Compress compresses data into a GLIF container.
func Compress(ctx context.Context, data []byte, cfg Config) ([]byte, error) {
	return pipeline.Compress(ctx, data, cfg)
}

// Decompress reverses Compress.
func Decompress(ctx context.Context, data []byte, threads int) ([]byte, error) {
	return pipeline.Decompress(ctx, data, threads)
}

// VerifyArchive checks a container's integrity without decompressing its
// payload, returning its sidecar metadata.
func VerifyArchive(data []byte) (container.Sidecar, error) {
	return pipeline.VerifyArchive(data)
}

// CompressFile compresses inputPath into a GLIF container at outputPath.
func CompressFile(ctx context.Context, inputPath, outputPath string, cfg Config) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %s", errs.ErrIoError, inputPath, err)
	}

	out, err := Compress(ctx, data, cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %s", errs.ErrIoError, outputPath, err)
	}

	return nil
}

// DecompressFile decompresses the GLIF container at inputPath into outputPath.
func DecompressFile(ctx context.Context, inputPath, outputPath string, threads int) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %s", errs.ErrIoError, inputPath, err)
	}

	out, err := Decompress(ctx, data, threads)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %s", errs.ErrIoError, outputPath, err)
	}

	return nil
}

// EncodeDirectory archives directory into a single GLIF container at
// outputPath: walk, build a manifest and payload blob, then run the
// standard compression pipeline over the linearized payload.
func EncodeDirectory(ctx context.Context, directory, outputPath string, archiverCfg archiver.Config, cfg Config) (archive.Manifest, error) {
	manifest, payload, err := archiver.Build(directory, archiverCfg)
	if err != nil {
		return archive.Manifest{}, err
	}

	manifestBytes, err := manifest.WriteTo(nil)
	if err != nil {
		return archive.Manifest{}, err
	}

	combined := append(manifestBytes, payload...)

	out, err := Compress(ctx, combined, cfg)
	if err != nil {
		return archive.Manifest{}, err
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return archive.Manifest{}, fmt.Errorf("%w: writing %s: %s", errs.ErrIoError, outputPath, err)
	}

	return manifest, nil
}

// DecodeDirectory reverses EncodeDirectory: decompress, split the manifest
// back out of the linearized payload, and restore every entry under
// outputDirectory.
func DecodeDirectory(ctx context.Context, inputPath, outputDirectory string, threads int, archiverCfg archiver.Config) (archive.Manifest, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return archive.Manifest{}, fmt.Errorf("%w: reading %s: %s", errs.ErrIoError, inputPath, err)
	}

	combined, err := Decompress(ctx, data, threads)
	if err != nil {
		return archive.Manifest{}, err
	}

	manifest, n, err := archive.ReadManifest(combined)
	if err != nil {
		return archive.Manifest{}, err
	}

	payload := combined[n:]

	return manifest, archiver.Restore(manifest, payload, outputDirectory, archiverCfg)
}
