package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"homeshare/internal/event"
	"homeshare/internal/handler"
	"homeshare/internal/model"
	"homeshare/internal/service"
	"homeshare/internal/storage"
	"homeshare/internal/upload"
	"homeshare/pkg/apierror"
)

// newTestServer stands up the real HTTP surface over temp directories so
// client behavior is exercised against the actual handlers, not stubs.
func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	root := t.TempDir()
	store, err := storage.New(root)
	require.NoError(t, err)

	manager, err := upload.NewManager(t.TempDir(), store, false, event.NewBus())
	require.NoError(t, err)

	browseHandler := handler.NewBrowseHandler(
		service.NewBrowseService(store, event.NewBus()),
		model.ServerInfo{ShareRoot: root, Version: "test"},
	)
	fileHandler := handler.NewFileHandler(service.NewFileService(store, t.TempDir()))
	uploadHandler := handler.NewUploadHandler(manager, 16<<20)
	archiveHandler := handler.NewArchiveHandler(store)

	r := chi.NewRouter()
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/info", browseHandler.ServerInfo)
		api.Get("/files", browseHandler.List)
		api.Get("/files/info", browseHandler.Info)
		api.Post("/directories", browseHandler.CreateDirectory)
		api.Delete("/files", browseHandler.Delete)
		api.Put("/files/move", browseHandler.Move)

		api.Post("/uploads", uploadHandler.CreateSession)
		api.Get("/uploads/{upload_id}", uploadHandler.Status)
		api.Put("/uploads/{upload_id}", uploadHandler.WriteChunk)
		api.Delete("/uploads/{upload_id}", uploadHandler.Cancel)

		api.Get("/files/download", fileHandler.Download)
		api.Get("/files/preview", fileHandler.Preview)
		api.Post("/archive", archiveHandler.Bundle)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, root
}

// recordingTransport captures the Content-Range header of every chunk PUT
// that goes over the wire.
type recordingTransport struct {
	mu     sync.Mutex
	ranges []string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPut {
		rt.mu.Lock()
		rt.ranges = append(rt.ranges, req.Header.Get("Content-Range"))
		rt.mu.Unlock()
	}
	return http.DefaultTransport.RoundTrip(req)
}

func (rt *recordingTransport) sentRanges() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.ranges...)
}

func requireAPIError(t *testing.T, err error, code string, status int) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
	require.Equal(t, status, apiErr.HTTPStatus)
}

func TestClientBrowseRoundTrip(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	api := New(server.URL, nil)
	ctx := context.Background()

	require.NoError(t, api.Mkdir(ctx, "docs"))
	require.NoError(t, api.Mkdir(ctx, "docs/drafts"))

	listing, err := api.List(ctx, "docs")
	require.NoError(t, err)
	require.Equal(t, "/docs", listing.CurrentPath)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "drafts", listing.Items[0].Name)
	require.Equal(t, "directory", listing.Items[0].Type)

	require.NoError(t, api.Move(ctx, "docs/drafts", "docs/archive"))

	entry, err := api.Stat(ctx, "docs/archive")
	require.NoError(t, err)
	require.Equal(t, "directory", entry.Type)

	require.NoError(t, api.Delete(ctx, "docs/archive"))

	_, err = api.Stat(ctx, "docs/archive")
	require.Error(t, err)
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	api := New(server.URL, nil)

	_, err := api.Stat(context.Background(), "missing.txt")
	requireAPIError(t, err, "NOT_FOUND", http.StatusNotFound)
}
