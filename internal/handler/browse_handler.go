package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"homeshare/internal/model"
	"homeshare/internal/service"
	"homeshare/pkg/apierror"
)

type BrowseHandler struct {
	service *service.BrowseService
	info    model.ServerInfo
}

func NewBrowseHandler(service *service.BrowseService, info model.ServerInfo) *BrowseHandler {
	return &BrowseHandler{service: service, info: info}
}

func (h *BrowseHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.List(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data)
}

func (h *BrowseHandler) Info(w http.ResponseWriter, r *http.Request) {
	requestedPath := strings.TrimSpace(r.URL.Query().Get("path"))
	if requestedPath == "" {
		writeError(w, apierror.BadRequest("query parameter 'path' is required", "path"))
		return
	}

	item, err := h.service.Info(r.Context(), requestedPath)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item)
}

func (h *BrowseHandler) ServerInfo(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.info)
}

func (h *BrowseHandler) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.CreateDirectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", err.Error()))
		return
	}

	created, err := h.service.CreateDirectory(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]string{"created": created})
}

func (h *BrowseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestedPath := strings.TrimSpace(r.URL.Query().Get("path"))
	if requestedPath == "" {
		writeError(w, apierror.BadRequest("query parameter 'path' is required", "path"))
		return
	}

	if err := h.service.Delete(r.Context(), requestedPath); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.DeleteResponse{Deleted: requestedPath})
}

func (h *BrowseHandler) Move(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req model.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", err.Error()))
		return
	}

	if err := h.service.Move(r.Context(), req.Source, req.Destination); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.MoveResponse{Moved: req.Source, To: req.Destination})
}
