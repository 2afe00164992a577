package handler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"homeshare/internal/archive"
	"homeshare/internal/model"
	"homeshare/internal/storage"
	"homeshare/pkg/apierror"
)

type ArchiveHandler struct {
	store *storage.Storage
}

func NewArchiveHandler(store *storage.Storage) *ArchiveHandler {
	return &ArchiveHandler{store: store}
}

// Bundle handles POST /api/v1/archive: one request, one complete zip stream
// of every selected path. Path resolution happens up front so invalid
// selections fail with a JSON error before any archive bytes are written.
func (h *ArchiveHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", err.Error()))
		return
	}

	if len(req.Paths) == 0 {
		writeError(w, apierror.BadRequest("paths must be a non-empty list", ""))
		return
	}

	for _, p := range req.Paths {
		if _, err := h.store.Stat(p); err != nil {
			writeError(w, err)
			return
		}
	}

	name := archive.SuggestedName(req.Paths)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))

	if err := archive.WriteZip(h.store, req.Paths, w); err != nil {
		// Headers are out; all we can do is cut the stream short and log.
		slog.Error("archive streaming failed", "error", err)
	}
}
