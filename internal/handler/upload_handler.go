package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"homeshare/internal/model"
	"homeshare/internal/upload"
	"homeshare/pkg/apierror"
)

// contentRangePattern matches the inclusive byte interval a chunk write
// declares: "bytes <start>-<end>/<total>".
var contentRangePattern = regexp.MustCompile(`^bytes (\d+)-(\d+)/(\d+)$`)

type UploadHandler struct {
	manager      *upload.Manager
	maxChunkSize int64
}

func NewUploadHandler(manager *upload.Manager, maxChunkSize int64) *UploadHandler {
	return &UploadHandler{manager: manager, maxChunkSize: maxChunkSize}
}

// CreateSession handles POST /api/v1/uploads.
func (h *UploadHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", err.Error()))
		return
	}

	state, err := h.manager.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, state)
}

// Status handles GET /api/v1/uploads/{upload_id}.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "upload_id")
	if uploadID == "" {
		writeError(w, apierror.BadRequest("upload_id is required", ""))
		return
	}

	state, err := h.manager.Status(r.Context(), uploadID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state)
}

// WriteChunk handles PUT /api/v1/uploads/{upload_id}. The body carries the
// raw chunk bytes; Content-Range declares the interval and the total size so
// the manager can validate the write against its authoritative offset.
func (h *UploadHandler) WriteChunk(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "upload_id")
	if uploadID == "" {
		writeError(w, apierror.BadRequest("upload_id is required", ""))
		return
	}

	contentRange := r.Header.Get("Content-Range")
	if contentRange == "" {
		writeError(w, apierror.BadRequest("missing Content-Range header", ""))
		return
	}

	match := contentRangePattern.FindStringSubmatch(contentRange)
	if match == nil {
		writeError(w, apierror.BadRequest("invalid Content-Range header", contentRange))
		return
	}

	start, _ := strconv.ParseInt(match[1], 10, 64)
	end, _ := strconv.ParseInt(match[2], 10, 64)
	total, _ := strconv.ParseInt(match[3], 10, 64)
	if end < start {
		writeError(w, apierror.BadRequest("invalid Content-Range interval", contentRange))
		return
	}

	length := end - start + 1
	if length > h.maxChunkSize {
		writeError(w, apierror.BadRequest(
			"chunk exceeds server maximum",
			strconv.FormatInt(h.maxChunkSize, 10),
		))
		return
	}

	if r.ContentLength >= 0 && r.ContentLength != length {
		writeError(w, apierror.BadRequest(
			"Content-Length mismatch",
			fmt.Sprintf("declared range covers %d bytes, body has %d", length, r.ContentLength),
		))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, length)
	defer r.Body.Close()

	state, err := h.manager.Append(r.Context(), uploadID, start, end+1, total, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state)
}

// Cancel handles DELETE /api/v1/uploads/{upload_id}.
func (h *UploadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "upload_id")
	if uploadID == "" {
		writeError(w, apierror.BadRequest("upload_id is required", ""))
		return
	}

	h.manager.Cancel(r.Context(), uploadID)
	writeSuccess(w, http.StatusOK, map[string]string{"deleted": uploadID})
}
