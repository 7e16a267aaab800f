package handlers

import (
	"net/http"
	"strings"

	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) PromotionsActive(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Upstream.ListActivePromotions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, promos)
}

func (h *Handler) PromotionsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Upstream.PromotionSummary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, summary)
}

func (h *Handler) PromotionCreate(w http.ResponseWriter, r *http.Request) {
	var input upstream.PromotionInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(input.Code) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "promotion code is required")
		return
	}
	if input.IsPersonal && strings.TrimSpace(input.UserID) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "personal promotions need a user")
		return
	}
	promo, err := h.Upstream.CreatePromotion(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, promo)
}

func (h *Handler) PromotionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Upstream.DeletePromotion(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) PromotionsPersonal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	promos, err := h.Upstream.ListPersonalPromotions(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, promos)
}

type promotionUsageRequest struct {
	Code string `json:"code"`
}

func (h *Handler) PromotionCheckUsage(w http.ResponseWriter, r *http.Request) {
	var req promotionUsageRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Code) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "promotion code is required")
		return
	}
	usage, err := h.Upstream.CheckPromotionUsage(r.Context(), req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, usage)
}
