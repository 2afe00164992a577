package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	t.Parallel()

	server, root := newTestServer(t)
	api := New(server.URL, nil)

	content := strings.Repeat("homeshare payload ", 10_000)
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.txt"), []byte(content), 0o644))

	t.Run("fresh download", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "data.txt")

		var last int64
		require.NoError(t, api.Download(context.Background(), "data.txt", local, func(sent, total int64) {
			require.LessOrEqual(t, last, sent)
			last = sent
			require.Equal(t, int64(len(content)), total)
		}))

		got, err := os.ReadFile(local)
		require.NoError(t, err)
		require.Equal(t, content, string(got))

		_, err = os.Stat(local + ".part")
		require.True(t, os.IsNotExist(err))
	})

	t.Run("continues a partial file", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "data.txt")
		require.NoError(t, os.WriteFile(local+".part", []byte(content[:1000]), 0o644))

		var first int64 = -1
		require.NoError(t, api.Download(context.Background(), "data.txt", local, func(sent, total int64) {
			if first < 0 {
				first = sent
			}
		}))
		require.Equal(t, int64(1000), first)

		got, err := os.ReadFile(local)
		require.NoError(t, err)
		require.Equal(t, content, string(got))
	})

	t.Run("missing remote file", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "none.txt")
		err := api.Download(context.Background(), "none.txt", local, nil)
		require.Error(t, err)

		_, statErr := os.Stat(local)
		require.True(t, os.IsNotExist(statErr))
	})
}
