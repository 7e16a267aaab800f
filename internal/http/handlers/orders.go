package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codehasanali/rafine-web/internal/ordersync"
	"github.com/codehasanali/rafine-web/internal/receipt"
	"github.com/codehasanali/rafine-web/internal/stats"
	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrdersList serves the synchronized view. No upstream round trip happens
// here; the list is whatever the last snapshot plus applied events say.
func (h *Handler) OrdersList(w http.ResponseWriter, r *http.Request) {
	orders := h.Sync.Orders()

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		parsed, ok := upstream.ParseOrderStatus(status)
		if !ok {
			response.Error(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("unknown status %q", status))
			return
		}
		filtered := make([]upstream.Order, 0, len(orders))
		for _, order := range orders {
			if order.Status == parsed {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}

	response.Success(w, map[string]any{"orders": orders})
}

// OrderDetail reads from the local view first and falls back to the platform
// for orders that predate the current snapshot window.
func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if order, ok := h.Sync.Get(orderID); ok {
		response.Success(w, order)
		return
	}

	order, err := h.Upstream.GetAdminOrder(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, order)
}

// OrderAdvance moves an order one step forward in its lifecycle. Advancing a
// finished order is a no-op rather than a failure.
func (h *Handler) OrderAdvance(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	next, err := h.Sync.Advance(r.Context(), orderID)
	if errors.Is(err, ordersync.ErrOrderTerminal) {
		order, _ := h.Sync.Get(orderID)
		response.Success(w, map[string]any{"order": order, "changed": false})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	order, _ := h.Sync.Get(orderID)
	response.Success(w, map[string]any{
		"order":      order,
		"nextStatus": next,
		"changed":    true,
	})
}

func (h *Handler) OrderCancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := h.Sync.Cancel(r.Context(), orderID); err != nil {
		h.writeError(w, err)
		return
	}
	order, _ := h.Sync.Get(orderID)
	response.Success(w, map[string]any{"order": order})
}

// OrdersRefresh forces a full snapshot reload on operator request.
func (h *Handler) OrdersRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Sync.LoadSnapshot(r.Context()); err != nil {
		h.Logger.Warn("manual snapshot reload failed", zap.Error(err))
		h.writeError(w, err)
		return
	}
	response.Success(w, map[string]any{"orders": h.Sync.Orders()})
}

func (h *Handler) OrderReceiptPDF(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	order, ok := h.Sync.Get(orderID)
	if !ok {
		fetched, err := h.Upstream.GetAdminOrder(r.Context(), orderID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		order = fetched
	}

	data, err := receipt.Render(order)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="order-%s.pdf"`, order.DisplayNumber()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// StatsSummary aggregates the live view. The period query accepts a Go
// duration and defaults to 30 days.
func (h *Handler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	period := 30 * 24 * time.Hour
	if raw := strings.TrimSpace(r.URL.Query().Get("period")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid period")
			return
		}
		period = parsed
	}
	response.Success(w, stats.Summarize(h.Sync.Orders(), time.Now(), period))
}
