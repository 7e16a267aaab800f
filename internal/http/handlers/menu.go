package handlers

import (
	"net/http"
	"strings"

	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"
)

func (h *Handler) MenuList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Upstream.ListMenuItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, items)
}

func (h *Handler) MenuDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid menu item id")
		return
	}
	item, err := h.Upstream.GetMenuItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, item)
}

func (h *Handler) MenuCreate(w http.ResponseWriter, r *http.Request) {
	var input upstream.MenuItemInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(input.Name) == "" || input.Price <= 0 {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "name and a positive price are required")
		return
	}
	item, err := h.Upstream.CreateMenuItem(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, item)
}

func (h *Handler) MenuUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid menu item id")
		return
	}
	var input upstream.MenuItemInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	item, err := h.Upstream.UpdateMenuItem(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, item)
}

func (h *Handler) MenuDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid menu item id")
		return
	}
	if err := h.Upstream.DeleteMenuItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Upstream.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, categories)
}

func (h *Handler) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "category name is required")
		return
	}
	category, err := h.Upstream.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, category)
}

func (h *Handler) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id")
		return
	}
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "category name is required")
		return
	}
	category, err := h.Upstream.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, category)
}

func (h *Handler) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid category id")
		return
	}
	if err := h.Upstream.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}
