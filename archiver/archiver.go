// Package archiver walks a directory tree, linearizes it into a
// manifest plus a concatenated payload blob, and restores it on extraction.
package archiver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/EarthwebAP/glifzip/archive"
	"github.com/EarthwebAP/glifzip/errs"
	"github.com/EarthwebAP/glifzip/internal/options"
)

// Config controls which files archiving includes and how extraction
// restores them.
type Config struct {
	// ExcludePatterns are glob patterns (matched against the
	// slash-separated relative path) that exclude a file or directory
	// and everything beneath it.
	ExcludePatterns []string
	// FollowSymlinks archives symlink targets' contents instead of the
	// link itself.
	FollowSymlinks bool
	// Progress, if set, is called after each entry is processed by Build
	// and by Restore. Collect does not call it.
	Progress func(done, total int)
}

// Option configures a Config through NewConfig.
type Option = options.Option[*Config]

// WithExcludePatterns appends glob patterns to exclude during archiving.
func WithExcludePatterns(patterns ...string) Option {
	return options.NoError[*Config](func(c *Config) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	})
}

// WithFollowSymlinks toggles whether symlink targets are archived by content
// instead of as links.
func WithFollowSymlinks(follow bool) Option {
	return options.NoError[*Config](func(c *Config) {
		c.FollowSymlinks = follow
	})
}

// WithProgress installs a callback invoked after each entry is processed.
func WithProgress(fn func(done, total int)) Option {
	return options.NoError[*Config](func(c *Config) {
		c.Progress = fn
	})
}

// NewConfig builds a Config from functional options, for callers who prefer
// composing behavior over a struct literal.
func NewConfig(opts ...Option) (Config, error) {
	cfg := &Config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return Config{}, err
	}

	return *cfg, nil
}

func (c Config) compilePatterns() ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(c.ExcludePatterns))
	for _, pattern := range c.ExcludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: exclude pattern %q: %s", errs.ErrInvalidInput, pattern, err)
		}
		compiled = append(compiled, g)
	}

	return compiled, nil
}

// Collect walks directory and returns every path beneath it (files and
// subdirectories, not the root itself), sorted for deterministic ordering,
// skipping anything matched by cfg's exclude patterns.
//
// When cfg.FollowSymlinks is set, a symlink that resolves to a directory is
// descended into like an ordinary directory instead of being recorded as a
// terminal link entry; a real-path guard prevents infinite recursion on a
// symlink cycle. A symlink to a regular file is still listed as a single
// path either way — Build decides, via the same flag, whether to archive it
// as a link or as the target's content.
func Collect(directory string, cfg Config) ([]string, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrIoError, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errs.ErrInvalidInput, directory)
	}

	patterns, err := cfg.compilePatterns()
	if err != nil {
		return nil, err
	}

	var paths []string
	visited := map[string]bool{}

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %s", errs.ErrIoError, dir, err)
		}

		for _, d := range entries {
			path := filepath.Join(dir, d.Name())

			rel, relErr := filepath.Rel(directory, path)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)

			excluded := false
			for _, g := range patterns {
				if g.Match(rel) {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}

			paths = append(paths, path)

			isDir := d.IsDir()
			if d.Type()&os.ModeSymlink != 0 && cfg.FollowSymlinks {
				real, evalErr := filepath.EvalSymlinks(path)
				if evalErr != nil {
					return fmt.Errorf("%w: resolving symlink %s: %s", errs.ErrIoError, path, evalErr)
				}

				target, statErr := os.Stat(real)
				if statErr != nil {
					return fmt.Errorf("%w: %s", errs.ErrIoError, statErr)
				}
				isDir = target.IsDir()
				if isDir && !visited[real] {
					visited[real] = true
					if err := walk(path); err != nil {
						return err
					}
				}

				continue
			}

			if isDir {
				if err := walk(path); err != nil {
					return err
				}
			}
		}

		return nil
	}

	if err := walk(directory); err != nil {
		return nil, err
	}

	sort.Strings(paths)

	return paths, nil
}

// Build walks directory and produces its manifest and the concatenated
// payload bytes of every regular file, in manifest order.
func Build(directory string, cfg Config) (archive.Manifest, []byte, error) {
	paths, err := Collect(directory, cfg)
	if err != nil {
		return archive.Manifest{}, nil, err
	}

	manifest := archive.NewManifest(directory)
	var payload []byte

	for i, path := range paths {
		rel, err := filepath.Rel(directory, path)
		if err != nil {
			return archive.Manifest{}, nil, err
		}

		// statPath is what archive.FromPath actually inspects. It's path
		// itself, preserving symlink-as-link classification (archive.FromPath
		// never follows on its own), unless FollowSymlinks resolves a
		// symlinked path down to its real target first.
		statPath := path
		lstatInfo, err := os.Lstat(path)
		if err != nil {
			return archive.Manifest{}, nil, fmt.Errorf("%w: %s", errs.ErrIoError, err)
		}
		if cfg.FollowSymlinks && lstatInfo.Mode()&os.ModeSymlink != 0 {
			real, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return archive.Manifest{}, nil, fmt.Errorf("%w: resolving symlink %s: %s", errs.ErrIoError, path, evalErr)
			}
			statPath = real
		}

		info, err := os.Lstat(statPath)
		if err != nil {
			return archive.Manifest{}, nil, fmt.Errorf("%w: %s", errs.ErrIoError, err)
		}

		var content []byte
		if info.Mode().IsRegular() {
			content, err = os.ReadFile(statPath)
			if err != nil {
				return archive.Manifest{}, nil, fmt.Errorf("%w: reading %s: %s", errs.ErrIoError, statPath, err)
			}
		}

		entry, err := archive.FromPath(statPath, rel, uint64(len(payload)), content)
		if err != nil {
			return archive.Manifest{}, nil, err
		}

		if content != nil {
			payload = append(payload, content...)
		}

		manifest.AddEntry(entry)

		if cfg.Progress != nil {
			cfg.Progress(i+1, len(paths))
		}
	}

	return manifest, payload, nil
}

// Restore recreates manifest's entries under outputDirectory, reading
// regular-file content from payload at each entry's recorded offset.
func Restore(manifest archive.Manifest, payload []byte, outputDirectory string, cfg Config) error {
	entries := manifest.SortedEntries()

	for i, entry := range entries {
		targetPath := filepath.Join(outputDirectory, filepath.FromSlash(entry.Path))

		switch entry.Type {
		case archive.FileTypeDirectory:
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrIoError, err)
			}
		case archive.FileTypeSymlink:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrIoError, err)
			}
			if err := os.Symlink(entry.SymlinkTarget, targetPath); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrIoError, err)
			}
		case archive.FileTypeRegular:
			start := entry.DataOffset
			end := start + entry.Size
			if end > uint64(len(payload)) {
				return fmt.Errorf("%w: %s data offset out of range", errs.ErrTruncatedPayload, entry.Path)
			}

			data := payload[start:end]
			if err := entry.VerifyIntegrity(data); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrIoError, err)
			}
			if err := os.WriteFile(targetPath, data, os.FileMode(entry.Mode)); err != nil {
				return fmt.Errorf("%w: %s", errs.ErrIoError, err)
			}
		}

		if entry.Type != archive.FileTypeSymlink {
			if err := entry.RestoreMetadata(targetPath); err != nil {
				return err
			}
		}

		if cfg.Progress != nil {
			cfg.Progress(i+1, len(entries))
		}
	}

	return nil
}
