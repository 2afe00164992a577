package client

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLocalFile(t *testing.T, size int64) (string, []byte) {
	t.Helper()

	data := make([]byte, size)
	_, err := rand.New(rand.NewSource(size)).Read(data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func TestUploadRoundTrip(t *testing.T) {
	t.Parallel()

	server, root := newTestServer(t)
	localPath, data := writeLocalFile(t, 1_500_000)

	cache := NewMemoryCache()
	api := New(server.URL, cache)
	api.ChunkSize = 512_000

	var offsets []int64
	progress := func(sent, total int64) {
		require.Equal(t, int64(1_500_000), total)
		offsets = append(offsets, sent)
	}

	require.NoError(t, api.Upload(context.Background(), localPath, "payload.bin", progress))

	uploaded, err := os.ReadFile(filepath.Join(root, "payload.bin"))
	require.NoError(t, err)
	require.Equal(t, data, uploaded)

	// Three 512,000-byte chunks cover 1,500,000 bytes, the last one short.
	require.Equal(t, []int64{0, 512_000, 1_024_000, 1_500_000}, offsets)
	for i := 1; i < len(offsets); i++ {
		require.Greater(t, offsets[i], offsets[i-1])
	}

	// The finished upload must not leave a resumable session behind.
	id, err := cache.Get(SessionKey("payload.bin", 1_500_000))
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestUploadResumesFromServerOffset(t *testing.T) {
	t.Parallel()

	server, root := newTestServer(t)
	localPath, data := writeLocalFile(t, 1_500_000)

	cache := NewMemoryCache()

	// First run: one 512,000-byte chunk lands, then the process dies.
	first := New(server.URL, cache)
	first.ChunkSize = 512_000

	sess, err := first.Resolve(context.Background(), "payload.bin", 1_500_000)
	require.NoError(t, err)
	require.Zero(t, sess.Received)

	src, err := os.Open(localPath)
	require.NoError(t, err)
	defer src.Close()

	state, err := first.writeChunk(context.Background(), sess.ID, src, 0, 512_000, 1_500_000)
	require.NoError(t, err)
	require.Equal(t, int64(512_000), state.Received)

	// Second run: a fresh client with the same cache must pick up the
	// session, observe the server's offset, and send only the suffix.
	transport := &recordingTransport{}
	second := New(server.URL, cache)
	second.ChunkSize = 512_000
	second.httpClient = &http.Client{Transport: transport}

	resumed, err := second.Resolve(context.Background(), "payload.bin", 1_500_000)
	require.NoError(t, err)
	require.Equal(t, sess.ID, resumed.ID)
	require.Equal(t, int64(512_000), resumed.Received)

	require.NoError(t, second.Upload(context.Background(), localPath, "payload.bin", nil))

	require.Equal(t, []string{
		"bytes 512000-1023999/1500000",
		"bytes 1024000-1499999/1500000",
	}, transport.sentRanges())

	uploaded, err := os.ReadFile(filepath.Join(root, "payload.bin"))
	require.NoError(t, err)
	require.Equal(t, data, uploaded)
}

func TestUploadSizeChangeStartsNewSession(t *testing.T) {
	t.Parallel()

	server, root := newTestServer(t)
	cache := NewMemoryCache()

	api := New(server.URL, cache)
	api.ChunkSize = 512_000

	sess, err := api.Resolve(context.Background(), "report.log", 1_500_000)
	require.NoError(t, err)

	// The file is rewritten before the upload finishes; its identity
	// changes with its size, so the stale session must not be reused.
	localPath, data := writeLocalFile(t, 900_000)

	transport := &recordingTransport{}
	api.httpClient = &http.Client{Transport: transport}

	require.NoError(t, api.Upload(context.Background(), localPath, "report.log", nil))

	ranges := transport.sentRanges()
	require.NotEmpty(t, ranges)
	require.Equal(t, "bytes 0-511999/900000", ranges[0])

	// The old session is still reachable under its original identity.
	stale, err := api.SessionStatus(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Zero(t, stale.Received)

	uploaded, err := os.ReadFile(filepath.Join(root, "report.log"))
	require.NoError(t, err)
	require.Equal(t, data, uploaded)
}

func TestResolveEvictsDeadCacheEntry(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	cache := NewMemoryCache()
	require.NoError(t, cache.Put(SessionKey("notes.txt", 4096), "deadbeef"))

	api := New(server.URL, cache)

	sess, err := api.Resolve(context.Background(), "notes.txt", 4096)
	require.NoError(t, err)
	require.NotEqual(t, "deadbeef", sess.ID)

	id, err := cache.Get(SessionKey("notes.txt", 4096))
	require.NoError(t, err)
	require.Equal(t, sess.ID, id)
}

func TestWriteChunkOffsetMismatch(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	api := New(server.URL, nil)

	sess, err := api.Resolve(context.Background(), "skewed.bin", 2048)
	require.NoError(t, err)

	payload := bytes.NewReader(make([]byte, 2048))

	// The server has received nothing, so a chunk starting at 100 must be
	// rejected without moving the offset.
	_, err = api.writeChunk(context.Background(), sess.ID, payload, 100, 512, 2048)
	requireAPIError(t, err, "OFFSET_MISMATCH", http.StatusConflict)

	state, err := api.SessionStatus(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Zero(t, state.Received)
}

func TestDriveRejectsStalledServer(t *testing.T) {
	t.Parallel()

	// A server that accepts chunks without advancing the offset would
	// otherwise loop forever.
	stalled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"upload_id": "stuck", "total_size": 1024, "received": 0},
		})
	}))
	t.Cleanup(stalled.Close)

	api := New(stalled.URL, nil)
	api.ChunkSize = 256

	sess := &Session{ID: "stuck", TargetPath: "stuck.bin", TotalSize: 1024}
	err := api.Drive(context.Background(), bytes.NewReader(make([]byte, 1024)), sess, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not advance")
}

func TestUploadRejectsDirectories(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	api := New(server.URL, nil)

	err := api.Upload(context.Background(), t.TempDir(), "dir", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}

func TestSessionKeyIncludesSize(t *testing.T) {
	t.Parallel()

	require.NotEqual(t, SessionKey("a.txt", 100), SessionKey("a.txt", 200))
	require.NotEqual(t, SessionKey("a.txt", 100), SessionKey("b.txt", 100))
	require.Equal(t, SessionKey("a.txt", 100), SessionKey("a.txt", 100))
	require.NotEqual(t, SessionKey("a.txt1", 0), SessionKey("a.txt", 10))
}
