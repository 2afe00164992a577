package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"homeshare/internal/config"
	"homeshare/internal/handler"
	"homeshare/internal/middleware"
	"homeshare/internal/ws"
)

type Handlers struct {
	Browse  *handler.BrowseHandler
	File    *handler.FileHandler
	Upload  *handler.UploadHandler
	Archive *handler.ArchiveHandler
}

func New(cfg *config.Config, handlers Handlers, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)
	requireWrite := middleware.RequireWrite(cfg.ReadOnly)
	transferTimeout := middleware.StreamingTimeout(cfg.TransferMaxDuration, cfg.TransferIdleTimeout)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		// Metadata endpoints run under the buffered request timeout;
		// transfer endpoints stream and get the idle-based guard instead.
		api.Group(func(meta chi.Router) {
			meta.Use(middleware.Timeout(cfg.RequestTimeout))

			meta.Get("/info", handlers.Browse.ServerInfo)
			meta.Get("/files", handlers.Browse.List)
			meta.Get("/files/info", handlers.Browse.Info)
			meta.With(requireWrite).Post("/directories", handlers.Browse.CreateDirectory)
			meta.With(requireWrite).Delete("/files", handlers.Browse.Delete)
			meta.With(requireWrite).Put("/files/move", handlers.Browse.Move)

			meta.With(requireWrite).Post("/uploads", handlers.Upload.CreateSession)
			meta.Get("/uploads/{upload_id}", handlers.Upload.Status)
			meta.With(requireWrite).Delete("/uploads/{upload_id}", handlers.Upload.Cancel)
		})

		api.Group(func(transfer chi.Router) {
			transfer.Use(transferTimeout)

			transfer.Get("/files/download", handlers.File.Download)
			transfer.Get("/files/preview", handlers.File.Preview)
			transfer.Get("/files/thumbnail", handlers.File.Thumbnail)
			transfer.With(requireWrite).Put("/uploads/{upload_id}", handlers.Upload.WriteChunk)
			transfer.Post("/archive", handlers.Archive.Bundle)
		})
	})

	if hub != nil {
		r.Get("/api/v1/events", hub.ServeHTTP)
	}

	return r
}
