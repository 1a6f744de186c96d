package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCatalogInitializeScansDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sample.csv", "name,age,city\nJohn,25,New York\nJane,30,Los Angeles\nBob,35,Chicago\n")

	c, err := New(Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, []string{"sample"}, c.Ids())
	ds, ok := c.Get("sample")
	require.True(t, ok)
	assert.Equal(t, int64(-1), ds.Metadata.TotalRecords)
	require.Equal(t, 3, ds.ArrowSchema.NumFields())
}

func TestCatalogMissingDirectoryYieldsEmptyCatalog(t *testing.T) {
	c, err := New(Config{DataDirectory: filepath.Join(t.TempDir(), "does-not-exist")})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))
	assert.Empty(t, c.Ids())
}

func TestCatalogInitializeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "x\n1\n")

	c, err := New(Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))

	writeCSV(t, dir, "b.csv", "y\n2\n")
	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, []string{"a"}, c.Ids())
}

func TestCatalogRefreshReplacesContents(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))
	assert.Empty(t, c.Ids())

	writeCSV(t, dir, "x.csv", "a\n1\n")
	count, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, c.Has("x"))
}

func TestCatalogSkipsUnreadableFileWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "good.csv", "a\n1\n")
	writeCSV(t, dir, "empty.csv", "")

	c, err := New(Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, c.Initialize(context.Background()))

	assert.True(t, c.Has("good"))
	assert.False(t, c.Has("empty"))
}
