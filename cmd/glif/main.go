// Command glif creates, extracts, verifies, and lists GLIF containers.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	glifzip "github.com/EarthwebAP/glifzip"
	"github.com/EarthwebAP/glifzip/archive"
	"github.com/EarthwebAP/glifzip/archiver"
)

var log = logrus.New()

func main() {
	flaggy.SetName("glif")
	flaggy.SetDescription("Content-addressed, parallel-codec compression containers")

	var (
		inputPath, outputPath string
		level, threads        int
		preset                string
		excludePatterns       []string
		verbose               bool
		directory             bool
	)

	createCmd := flaggy.NewSubcommand("create")
	createCmd.Description = "Create a GLIF container from a file or directory"
	createCmd.String(&inputPath, "i", "input", "Input file or directory")
	createCmd.String(&outputPath, "o", "output", "Output .glif path")
	createCmd.String(&preset, "p", "preset", "Compression preset: fast, balanced, high (default balanced)")
	createCmd.Int(&level, "l", "level", "Zstandard level, 1..22 (overrides preset)")
	createCmd.Int(&threads, "t", "threads", "Worker threads (default: number of CPUs)")
	createCmd.StringSlice(&excludePatterns, "x", "exclude", "Glob pattern to exclude (directory mode only)")
	createCmd.Bool(&directory, "d", "directory", "Treat input as a directory")
	createCmd.Bool(&verbose, "v", "verbose", "Verbose logging")

	extractCmd := flaggy.NewSubcommand("extract")
	extractCmd.Description = "Extract a GLIF container"
	extractCmd.String(&inputPath, "i", "input", "Input .glif path")
	extractCmd.String(&outputPath, "o", "output", "Output file or directory")
	extractCmd.Int(&threads, "t", "threads", "Worker threads (default: number of CPUs)")
	extractCmd.Bool(&directory, "d", "directory", "Treat the archive as a directory archive")
	extractCmd.Bool(&verbose, "v", "verbose", "Verbose logging")

	verifyCmd := flaggy.NewSubcommand("verify")
	verifyCmd.Description = "Verify a GLIF container's integrity without extracting"
	verifyCmd.String(&inputPath, "i", "input", "Input .glif path")

	listCmd := flaggy.NewSubcommand("list")
	listCmd.Description = "List the entries in a directory GLIF container"
	listCmd.String(&inputPath, "i", "input", "Input .glif path")
	listCmd.Int(&threads, "t", "threads", "Worker threads (default: number of CPUs)")

	flaggy.AttachSubcommand(createCmd, 1)
	flaggy.AttachSubcommand(extractCmd, 1)
	flaggy.AttachSubcommand(verifyCmd, 1)
	flaggy.AttachSubcommand(listCmd, 1)
	flaggy.Parse()

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	ctx := context.Background()

	var err error
	switch {
	case createCmd.Used:
		err = runCreate(ctx, inputPath, outputPath, preset, level, threads, excludePatterns, directory)
	case extractCmd.Used:
		err = runExtract(ctx, inputPath, outputPath, threads, directory)
	case verifyCmd.Used:
		err = runVerify(inputPath)
	case listCmd.Used:
		err = runList(ctx, inputPath, threads)
	default:
		flaggy.ShowHelpAndExit("a subcommand is required")
	}

	if err != nil {
		log.WithError(err).Error("glif failed")
		os.Exit(1)
	}
}

func resolvePreset(preset string, level int) glifzip.Config {
	var cfg glifzip.Config
	switch preset {
	case "fast":
		cfg = glifzip.Fast()
	case "high":
		cfg = glifzip.HighCompression()
	default:
		cfg = glifzip.Balanced()
	}

	if level > 0 {
		cfg.Level = level
	}

	return cfg
}

func runCreate(ctx context.Context, input, output, preset string, level, threads int, excludes []string, isDirectory bool) error {
	cfg := resolvePreset(preset, level)
	cfg.Threads = threads

	if isDirectory {
		manifest, err := glifzip.EncodeDirectory(ctx, input, output, archiver.Config{ExcludePatterns: excludes, Progress: progressCallback("archiving")}, cfg)
		if err != nil {
			return err
		}
		log.Infof("archived %d entries from %s into %s", manifest.FileCount, input, output)

		return nil
	}

	if err := glifzip.CompressFile(ctx, input, output, cfg); err != nil {
		return err
	}
	log.Infof("compressed %s into %s", input, output)

	return nil
}

func runExtract(ctx context.Context, input, output string, threads int, isDirectory bool) error {
	if isDirectory {
		manifest, err := glifzip.DecodeDirectory(ctx, input, output, threads, archiver.Config{Progress: progressCallback("extracting")})
		if err != nil {
			return err
		}
		log.Infof("extracted %d entries from %s into %s", manifest.FileCount, input, output)

		return nil
	}

	if err := glifzip.DecompressFile(ctx, input, output, threads); err != nil {
		return err
	}
	log.Infof("decompressed %s into %s", input, output)

	return nil
}

func runVerify(input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	sidecar, err := glifzip.VerifyArchive(data)
	if err != nil {
		return err
	}

	fmt.Printf("format: %s\n", sidecar.Format)
	fmt.Printf("payload: %d bytes (%s)\n", sidecar.Payload.Size, sidecar.Payload.Hash)
	fmt.Printf("archive: %d bytes (%s)\n", sidecar.Archive.Size, sidecar.Archive.Hash)
	fmt.Printf("codec: %s level %d, decompressed with %s\n", sidecar.Archive.CompressedWith, sidecar.Archive.CompressionLevel, sidecar.Archive.DecompressedWith)

	return nil
}

func runList(ctx context.Context, input string, threads int) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	decompressed, err := glifzip.Decompress(ctx, data, threads)
	if err != nil {
		return err
	}

	manifest, _, err := archive.ReadManifest(decompressed)
	if err != nil {
		return err
	}

	for _, line := range manifest.ListFiles() {
		fmt.Println(line)
	}

	return nil
}
