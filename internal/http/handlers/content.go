package handlers

import (
	"net/http"
	"strings"

	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) MenuItemComments(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid menu item id")
		return
	}
	comments, err := h.Upstream.ListMenuItemComments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, comments)
}

func (h *Handler) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt64(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid comment id")
		return
	}
	if err := h.Upstream.DeleteComment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

type blogCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) BlogCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Upstream.ListBlogCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, categories)
}

func (h *Handler) BlogCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req blogCategoryRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "category name is required")
		return
	}
	category, err := h.Upstream.CreateBlogCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, category)
}

func (h *Handler) BlogCategoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Upstream.DeleteBlogCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) BlogPostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Upstream.ListBlogPosts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, posts)
}

func (h *Handler) BlogPostDetail(w http.ResponseWriter, r *http.Request) {
	post, err := h.Upstream.GetBlogPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, post)
}

func (h *Handler) BlogPostCreate(w http.ResponseWriter, r *http.Request) {
	var input upstream.BlogPostInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "title and content are required")
		return
	}
	post, err := h.Upstream.CreateBlogPost(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, post)
}

func (h *Handler) BlogPostUpdate(w http.ResponseWriter, r *http.Request) {
	var input upstream.BlogPostInput
	if err := decodeBody(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	post, err := h.Upstream.UpdateBlogPost(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, post)
}

func (h *Handler) BlogPostDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Upstream.DeleteBlogPost(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}
