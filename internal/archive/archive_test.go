package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"homeshare/internal/storage"
)

func buildZip(t *testing.T, store *storage.Storage, paths []string) map[string][]byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteZip(store, paths, &buf))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	entries := make(map[string][]byte)
	for _, file := range reader.File {
		rc, openErr := file.Open()
		require.NoError(t, openErr)
		content, readErr := io.ReadAll(rc)
		require.NoError(t, readErr)
		require.NoError(t, rc.Close())
		entries[file.Name] = content
	}
	return entries
}

func TestWriteZip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := storage.New(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "img"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "img", "p.png"), []byte{0x89}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("top"), 0o644))

	t.Run("mixed selection of files and a directory", func(t *testing.T) {
		entries := buildZip(t, store, []string{"docs", "top.txt"})

		require.Equal(t, []byte("alpha"), entries["docs/a.txt"])
		require.Equal(t, []byte{0x89}, entries["docs/img/p.png"])
		require.Equal(t, []byte("top"), entries["top.txt"])

		// Empty directories keep explicit entries.
		_, hasEmpty := entries["docs/empty/"]
		require.True(t, hasEmpty)
	})

	t.Run("single file keeps its share-relative name", func(t *testing.T) {
		entries := buildZip(t, store, []string{"docs/a.txt"})
		require.Equal(t, []byte("alpha"), entries["docs/a.txt"])
		require.Len(t, entries, 1)
	})

	t.Run("missing path fails the archive", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteZip(store, []string{"ghost.txt"}, &buf)
		require.Error(t, err)
	})

	t.Run("traversal is refused", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteZip(store, []string{"../outside"}, &buf)
		require.Error(t, err)
	})
}

func TestSuggestedName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a.txt.zip", SuggestedName([]string{"docs/a.txt"}))
	require.Equal(t, "docs.zip", SuggestedName([]string{"docs/"}))
	require.Equal(t, "homeshare.zip", SuggestedName([]string{"a", "b"}))
	require.Equal(t, "homeshare.zip", SuggestedName(nil))
}
