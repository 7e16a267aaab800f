package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/codehasanali/rafine-web/internal/qr"
	"github.com/codehasanali/rafine-web/pkg/response"
)

type qrGenerateRequest struct {
	Points int `json:"points"`
}

// QRGenerate registers a points voucher with the platform and returns it.
// The browser fetches the printable image separately via QRImage.
func (h *Handler) QRGenerate(w http.ResponseWriter, r *http.Request) {
	var req qrGenerateRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Points <= 0 {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "points must be positive")
		return
	}

	code, err := h.Upstream.GenerateQR(r.Context(), req.Points)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, code)
}

// QRImage renders the scannable PNG for an already-registered voucher.
func (h *Handler) QRImage(w http.ResponseWriter, r *http.Request) {
	qrID := strings.TrimSpace(r.URL.Query().Get("qrId"))
	points, _ := strconv.Atoi(r.URL.Query().Get("points"))
	if qrID == "" || points <= 0 {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "qrId and points are required")
		return
	}

	size := qr.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid size")
			return
		}
		size = parsed
	}

	png, err := qr.RenderPoints(qrID, points, size)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not render code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
