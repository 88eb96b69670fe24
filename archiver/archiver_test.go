package archiver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EarthwebAP/glifzip/archive"
	"github.com/EarthwebAP/glifzip/archiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file1.txt"), []byte("Hello, World!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file2.log"), []byte("log line"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subdir", "file3.txt"), []byte("Test data"), 0o644))

	return dir
}

func TestCollectFiles(t *testing.T) {
	dir := makeTree(t)

	paths, err := archiver.Collect(dir, archiver.Config{})
	require.NoError(t, err)
	assert.Len(t, paths, 4) // subdir + 3 files
}

func TestCollectFilesWithExclude(t *testing.T) {
	dir := makeTree(t)

	paths, err := archiver.Collect(dir, archiver.Config{ExcludePatterns: []string{"*.log"}})
	require.NoError(t, err)
	assert.Len(t, paths, 3) // subdir + file1.txt + subdir/file3.txt
}

func TestNewConfigFromOptions(t *testing.T) {
	dir := makeTree(t)

	var progressCalls int
	cfg, err := archiver.NewConfig(
		archiver.WithExcludePatterns("*.log"),
		archiver.WithFollowSymlinks(true),
		archiver.WithProgress(func(done, total int) { progressCalls++ }),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.log"}, cfg.ExcludePatterns)
	assert.True(t, cfg.FollowSymlinks)

	paths, err := archiver.Collect(dir, cfg)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestBuildAndRestoreRoundTrip(t *testing.T) {
	sourceDir := makeTree(t)
	extractDir := t.TempDir()

	manifest, payload, err := archiver.Build(sourceDir, archiver.Config{ExcludePatterns: []string{"*.log"}})
	require.NoError(t, err)
	assert.Equal(t, 3, manifest.FileCount)

	require.NoError(t, archiver.Restore(manifest, payload, extractDir, archiver.Config{}))

	content, err := os.ReadFile(filepath.Join(extractDir, "file1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(content))

	content, err = os.ReadFile(filepath.Join(extractDir, "subdir", "file3.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Test data", string(content))

	_, err = os.Stat(filepath.Join(extractDir, "file2.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestFollowSymlinksArchivesTargetContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("real content"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")))

	withoutFollow, _, err := archiver.Build(dir, archiver.Config{})
	require.NoError(t, err)
	linkEntry, ok := withoutFollow.FindEntry("link.txt")
	require.True(t, ok)
	assert.Equal(t, archive.FileTypeSymlink, linkEntry.Type)

	withFollow, payload, err := archiver.Build(dir, archiver.Config{FollowSymlinks: true})
	require.NoError(t, err)
	linkEntry, ok = withFollow.FindEntry("link.txt")
	require.True(t, ok)
	assert.Equal(t, archive.FileTypeRegular, linkEntry.Type)
	assert.Equal(t, "real content", string(payload[linkEntry.DataOffset:linkEntry.DataOffset+linkEntry.Size]))
}

func TestFollowSymlinksDescendsIntoLinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "realdir")
	require.NoError(t, os.Mkdir(real, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "nested.txt"), []byte("nested"), 0o644))
	require.NoError(t, os.Symlink(real, filepath.Join(dir, "linkdir")))

	manifest, _, err := archiver.Build(dir, archiver.Config{FollowSymlinks: true})
	require.NoError(t, err)

	_, ok := manifest.FindEntry("linkdir/nested.txt")
	assert.True(t, ok)
}

func TestBuildRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, _, err := archiver.Build(file, archiver.Config{})
	require.Error(t, err)
}

func TestRestoreDetectsTamperedPayload(t *testing.T) {
	sourceDir := makeTree(t)
	extractDir := t.TempDir()

	manifest, payload, err := archiver.Build(sourceDir, archiver.Config{})
	require.NoError(t, err)

	for i := range payload {
		payload[i] ^= 0xff
	}

	err = archiver.Restore(manifest, payload, extractDir, archiver.Config{})
	require.Error(t, err)
}
