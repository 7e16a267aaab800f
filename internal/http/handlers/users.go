package handlers

import (
	"net/http"

	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Upstream.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, map[string]any{"users": users})
}

func (h *Handler) UserDetail(w http.ResponseWriter, r *http.Request) {
	user, err := h.Upstream.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, user)
}

func (h *Handler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil || len(fields) == 0 {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "nothing to update")
		return
	}
	user, err := h.Upstream.UpdateUser(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, user)
}

func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Upstream.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) UserPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.Upstream.GetUserPoints(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, map[string]any{"points": points})
}

func (h *Handler) FreeProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := h.Upstream.ListFreeProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, products)
}

func (h *Handler) FreeProductAssign(w http.ResponseWriter, r *http.Request) {
	var input upstream.FreeProductInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if input.UserID == "" || input.MenuItemID == 0 {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "user and menu item are required")
		return
	}
	if !input.EndDate.After(input.StartDate) {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "end date must be after start date")
		return
	}
	product, err := h.Upstream.AssignFreeProduct(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, product)
}

func (h *Handler) FreeProductDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Upstream.DeleteFreeProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}
