package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExtensions(t *testing.T) {
	assert.Contains(t, New().Extensions(), ".txt")
}

func TestExtract(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("Photosynthesis converts light.\n"))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis converts light.\n", text)
}

func TestExtract_StripsBOMAndInvalidUTF8(t *testing.T) {
	path := writeFile(t, "bom.txt", []byte("\xef\xbb\xbfcaf\xff\xe9 ok"))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "caf ok", text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, "irrelevant.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
