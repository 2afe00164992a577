package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"homeshare/internal/event"
	"homeshare/internal/model"
	"homeshare/internal/storage"
	"homeshare/internal/upload"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func newUploadServer(t *testing.T, maxChunkSize int64) *httptest.Server {
	t.Helper()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	manager, err := upload.NewManager(t.TempDir(), store, false, event.NewBus())
	require.NoError(t, err)

	h := NewUploadHandler(manager, maxChunkSize)

	r := chi.NewRouter()
	r.Post("/api/v1/uploads", h.CreateSession)
	r.Get("/api/v1/uploads/{upload_id}", h.Status)
	r.Put("/api/v1/uploads/{upload_id}", h.WriteChunk)
	r.Delete("/api/v1/uploads/{upload_id}", h.Cancel)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()

	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func createSession(t *testing.T, server *httptest.Server, path string, size int64) model.SessionState {
	t.Helper()

	body := fmt.Sprintf(`{"path":%q,"size":%d}`, path, size)
	resp, err := http.Post(server.URL+"/api/v1/uploads", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	var state model.SessionState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	return state
}

func putChunk(t *testing.T, server *httptest.Server, id string, contentRange string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/v1/uploads/"+id, bytes.NewReader(body))
	require.NoError(t, err)
	if contentRange != "" {
		req.Header.Set("Content-Range", contentRange)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestWriteChunkValidation(t *testing.T) {
	t.Parallel()

	server := newUploadServer(t, 1024)
	state := createSession(t, server, "chunked.bin", 2048)

	t.Run("missing header", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "", []byte("xx"))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		require.False(t, env.Success)
		require.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"bytes 0-99", "bytes 0-99/*", "0-99/2048", "bytes a-b/2048"} {
			resp := putChunk(t, server, state.UploadID, header, make([]byte, 100))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "header %q", header)
			resp.Body.Close()
		}
	})

	t.Run("inverted interval", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "bytes 99-0/2048", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("chunk above the server limit", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "bytes 0-2047/2048", make([]byte, 2048))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("content length must match the interval", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "bytes 0-99/2048", make([]byte, 50))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("out of order chunk conflicts", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "bytes 100-199/2048", make([]byte, 100))
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		require.Equal(t, "OFFSET_MISMATCH", env.Error.Code)
	})

	t.Run("valid chunk advances and reports state", func(t *testing.T) {
		resp := putChunk(t, server, state.UploadID, "bytes 0-1023/2048", make([]byte, 1024))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		require.True(t, env.Success)

		var current model.SessionState
		require.NoError(t, json.Unmarshal(env.Data, &current))
		require.Equal(t, int64(1024), current.Received)
		require.False(t, current.Completed)
	})
}

func TestStatusAndCancel(t *testing.T) {
	t.Parallel()

	server := newUploadServer(t, 1024)
	state := createSession(t, server, "tracked.bin", 512)

	resp, err := http.Get(server.URL + "/api/v1/uploads/" + state.UploadID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/uploads/"+state.UploadID, nil)
	require.NoError(t, err)
	deleteResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)
	deleteResp.Body.Close()

	statusResp, err := http.Get(server.URL + "/api/v1/uploads/" + state.UploadID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, statusResp.StatusCode)

	notFound := decodeEnvelope(t, statusResp)
	require.False(t, notFound.Success)
	require.Equal(t, "NOT_FOUND", notFound.Error.Code)

	missing, err := http.Get(server.URL + "/api/v1/uploads/nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
	missing.Body.Close()
}
