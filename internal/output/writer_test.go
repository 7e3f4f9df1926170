package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	data := []byte(`{"contents": []}` + "\n")
	require.NoError(t, w.Write(data))
	assert.Equal(t, string(data), buf.String())
}

func TestStdoutWriter_NilDefault(t *testing.T) {
	assert.NotNil(t, NewStdoutWriter(nil))
}

func TestFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "feed.json")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("{}\n")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")

	require.NoError(t, NewFileWriter(path, WithPermissions(0o600)).Write([]byte("{}")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_ReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644)) //nolint:gosec // test

	require.NoError(t, NewFileWriter(path).Write([]byte("new")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not remain")
}

func TestFileWriter_InvalidPath(t *testing.T) {
	assert.Error(t, NewFileWriter("/dev/null/impossible/path.json").Write([]byte("data")))
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, &StdoutWriter{}, NewWriter("", &buf))
	assert.IsType(t, &StdoutWriter{}, NewWriter("-", &buf))

	fw, ok := NewWriter("x.json", &buf).(*FileWriter)
	require.True(t, ok)
	assert.Equal(t, "x.json", fw.Path())
}
