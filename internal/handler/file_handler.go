package handler

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"homeshare/internal/service"
	"homeshare/pkg/apierror"
)

type FileHandler struct {
	service *service.FileService
}

func NewFileHandler(service *service.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// Download serves file bytes with range support (Accept-Ranges / 206 /
// Content-Range come from http.ServeContent) and an attachment disposition.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "attachment")
}

// Preview serves the same range-capable bytes inline. Text preview clients
// fetch a bounded prefix via a Range header; media elements issue their own
// range requests against this endpoint.
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "inline")
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, disposition string) {
	requestedPath := strings.TrimSpace(r.URL.Query().Get("path"))
	if requestedPath == "" {
		writeError(w, apierror.BadRequest("query parameter 'path' is required", "path"))
		return
	}

	file, info, mimeType, err := h.service.GetFile(requestedPath)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	filename := filepath.Base(requestedPath)
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), file)
}

func (h *FileHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	requestedPath := strings.TrimSpace(r.URL.Query().Get("path"))
	if requestedPath == "" {
		writeError(w, apierror.BadRequest("query parameter 'path' is required", "path"))
		return
	}

	size := 256
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			size = parsed
		}
	}
	if size < 32 {
		size = 32
	}
	if size > 2048 {
		size = 2048
	}

	file, info, err := h.service.GetThumbnail(requestedPath, size)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "UNSUPPORTED_TYPE" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeError(w, err)
		return
	}
	defer file.Close()

	filename := filepath.Base(requestedPath) + ".jpg"
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), file)
}
