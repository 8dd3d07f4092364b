package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/blobstore"
)

const maxUploadBytes = 25 * 1024 * 1024

type blobStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Path(key string) (string, error)
}

// UploadHandler accepts assignment files and serves them back.
type UploadHandler struct {
	blobs blobStore
}

func NewUploadHandler(blobs blobStore) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 25MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	// Sniff the first 512 bytes, then rewind.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := http.DetectContentType(buf[:n])
	if !isAllowedUpload(mimeType, header.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "File type not supported", r))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read file", r))
		return
	}

	url, err := h.blobs.Save(r.Context(), header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("upload failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"url":       url,
		"filename":  header.Filename,
		"mime_type": mimeType,
	})
}

// Serve streams a stored file. Keys are random, so the route is public.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	path, err := h.blobs.Path(chi.URLParam(r, "*"))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read file", r))
		return
	}
	http.ServeFile(w, r, path)
}

var uploadExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".zip":  true,
}

func isAllowedUpload(mime, filename string) bool {
	if !uploadExtensions[strings.ToLower(filepath.Ext(filename))] {
		return false
	}
	switch {
	case strings.HasPrefix(mime, "text/plain"),
		mime == "application/pdf",
		mime == "application/zip", // docx is a zip container
		mime == "image/png",
		mime == "image/jpeg",
		mime == "application/octet-stream":
		return true
	}
	return false
}
