package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, size int, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestNextPath_NamesAfterInstant(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "recordings")
	lib := New(dir, ".caf")
	now := time.Date(2026, 10, 19, 14, 3, 11, 999_000_000, time.FixedZone("CEST", 2*3600))

	path, err := lib.NextPath(now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2026-10-19T14:03:11+02:00.caf"), path)
	assert.DirExists(t, dir)
}

func TestNextPath_UTCUsesZ(t *testing.T) {
	lib := New(t.TempDir(), "caf")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := lib.NextPath(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z.caf", filepath.Base(path))
}

func TestNextPath_SameSecondCollision(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir, "caf")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := lib.NextPath(now)
	require.NoError(t, err)
	touch(t, first, 10, now)

	second, err := lib.NextPath(now.Add(300 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z-2.caf", filepath.Base(second))
	touch(t, second, 10, now)

	third, err := lib.NextPath(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z-3.caf", filepath.Base(third))
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir, "caf")
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "old.caf"), 2048, base)
	touch(t, filepath.Join(dir, "new.CAF"), 10, base.Add(time.Hour))
	touch(t, filepath.Join(dir, "notes.txt"), 10, base.Add(2*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.caf"), 0755))

	recordings, err := lib.List()
	require.NoError(t, err)
	require.Len(t, recordings, 2)

	assert.Equal(t, "new.CAF", recordings[0].Name)
	assert.Equal(t, "old.caf", recordings[1].Name)
	assert.Equal(t, "2.0 KB", recordings[1].SizeHuman)
	assert.Equal(t, "caf", recordings[0].Extension)
}

func TestList_MissingDirectory(t *testing.T) {
	lib := New(filepath.Join(t.TempDir(), "absent"), "caf")

	recordings, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, recordings)

	_, err = lib.Latest()
	assert.ErrorIs(t, err, ErrNoRecordings)
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir, "caf")
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "a.caf"), 10, base)
	touch(t, filepath.Join(dir, "b.caf"), 10, base.Add(time.Minute))

	latest, err := lib.Latest()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.caf"), latest.Path)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
}
