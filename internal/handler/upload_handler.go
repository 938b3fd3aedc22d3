package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"foodcourt/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadSize bounds a single review image upload.
const maxUploadSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadHandler accepts review image uploads and stores them through the
// configured uploader.
type UploadHandler struct {
	uploader storage.Uploader
	logger   zerolog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader storage.Uploader, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /api/uploads multipart requests. The stored object key
// is derived from the authenticated user and a fresh id, never from the
// client-supplied file name.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeValidation(w, "File exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, "A file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		writeValidation(w, "Only image uploads are accepted")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("%s/%s%s", user.ID, uuid.NewString(), ext)

	url, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("user_id", user.ID.String()).
		Str("key", key).
		Int64("size", header.Size).
		Msg("image uploaded")

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
