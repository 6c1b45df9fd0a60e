package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"immersionfacile/internal/document/service"
	"immersionfacile/internal/document/store"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

// Service defines the file operations exposed over HTTP.
type Service interface {
	UploadFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	GetFile(ctx context.Context, key string) (io.ReadCloser, store.Object, error)
}

type Handler struct {
	files  Service
	logger *slog.Logger
}

func New(files Service, logger *slog.Logger) *Handler {
	return &Handler{files: files, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/files", h.handleUpload)
	r.Get("/files/{key}", h.handleGet)
}

// handleUpload expects a multipart form with a "file" part and answers the
// file's public URL as a JSON string.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxFileSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.WarnContext(ctx, "invalid upload form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a file part is required"))
		return
	}
	defer file.Close()

	url, err := h.files.UploadFile(ctx, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to upload file",
			"request_id", requestID,
			"filename", header.Filename,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, url)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rc, obj, err := h.files.GetFile(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream file", "key", obj.Key, "error", err)
	}
}
