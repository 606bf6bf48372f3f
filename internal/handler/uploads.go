package handler

import (
	"io"
	"net/http"

	"github.com/relayhq/chat-platform/internal/upload"
	"github.com/relayhq/chat-platform/pkg/logger"
)

const maxUploadBytes = 25 << 20 // 25MB

// UploadHandler accepts media uploads and hands back the descriptor
// that file messages carry.
type UploadHandler struct {
	uploader upload.Uploader
	logger   *logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(up upload.Uploader, log *logger.Logger) *UploadHandler {
	return &UploadHandler{uploader: up, logger: log}
}

// Upload handles POST /api/v1/uploads (multipart field "file",
// optional ?folder=avatars).
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	folder := upload.FolderMessages
	if r.URL.Query().Get("folder") == "avatars" {
		folder = upload.FolderAvatars
	}

	asset, err := h.uploader.Upload(r.Context(), data, header.Filename, folder)
	if err != nil {
		h.logger.Error("upload failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, asset)
}
