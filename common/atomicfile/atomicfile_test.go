package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	require.NoError(t, WriteFile(path, []byte(`{"a":1}`), 0644))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	// overwriting replaces the contents wholesale
	require.NoError(t, WriteFile(path, []byte(`{"b":2}`), 0644))
	got, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(got))
}

func TestWriteMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "data.json"), []byte("x"), 0644)
	assert.Error(t, err)
}

func TestReadMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
