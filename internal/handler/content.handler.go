package handler

import (
	"errors"
	"net/http"

	"storvbox-be/internal/content"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// The blog degrades to an empty list when no CMS project is configured.

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.Content.Posts(ctx)
	if errors.Is(err, content.ErrNotConfigured) {
		logger.FromCtx(ctx).Warn("cms not configured, serving empty blog")
		posts = []content.Post{}
		err = nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load posts", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *Handler) ListBlogCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.Content.Categories(ctx)
	if errors.Is(err, content.ErrNotConfigured) {
		categories = []content.Category{}
		err = nil
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Content.PostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, content.ErrNotConfigured) {
		err = content.ErrPostNotFound
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, post)
}
