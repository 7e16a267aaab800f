package handlers

import (
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codehasanali/rafine-web/internal/imaging"
	"github.com/codehasanali/rafine-web/pkg/response"

	"go.uber.org/zap"
)

func randomSuffix8() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

// readImageBytes pulls the uploaded file out of the multipart form and
// rejects anything over the size cap or outside the accepted image types.
func (h *Handler) readImageBytes(r *http.Request) ([]byte, string, bool) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, "FILE_REQUIRED", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.Config.MaxFileSizeBytes+1))
	if err != nil {
		return nil, "UPLOAD_FAILED", false
	}
	if int64(len(data)) > h.Config.MaxFileSizeBytes {
		return nil, "FILE_TOO_LARGE", false
	}

	contentType := imaging.DetectContentType(data)
	if !imaging.AllowedContentType(contentType) {
		return nil, "INVALID_FILE", false
	}
	return data, "", true
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, prefix string) {
	if h.Store == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "object store is not configured")
		return
	}

	data, code, ok := h.readImageBytes(r)
	if !ok {
		status := http.StatusBadRequest
		if code == "UPLOAD_FAILED" {
			status = http.StatusInternalServerError
		}
		response.Error(w, status, code, "could not read uploaded file")
		return
	}

	jpegBytes, meta, err := imaging.EncodeJPEGFitInside(data, h.Config.ImageMaxSide, h.Config.ImageJPEGQuality)
	if err != nil {
		h.Logger.Warn("image encode failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "INVALID_FILE", "could not decode image")
		return
	}

	key := fmt.Sprintf("%s/%d-%s.jpg", prefix, time.Now().UnixMilli(), randomSuffix8())
	url, err := h.Store.PutObject(r.Context(), key, jpegBytes, "image/jpeg")
	if err != nil {
		h.Logger.Error("object store put failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "UPLOAD_FAILED", "could not store image")
		return
	}

	response.Success(w, map[string]any{
		"url":    url,
		"width":  meta.Width,
		"height": meta.Height,
		"format": meta.Format,
	})
}

func (h *Handler) UploadMenuImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "menu")
}

func (h *Handler) UploadBlogImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "blog")
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

// DeleteImage removes a previously uploaded object. URLs outside the public
// base are ignored rather than rejected, so stale references cannot hit
// foreign buckets.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "object store is not configured")
		return
	}

	var req deleteImageRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "url is required")
		return
	}

	if err := h.Store.DeleteURL(r.Context(), req.URL); err != nil {
		h.Logger.Warn("object delete failed", zap.String("url", req.URL), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "DELETE_FAILED", "could not delete image")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}
