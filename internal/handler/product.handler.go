package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storvbox-be/internal/logger"
	"storvbox-be/internal/product"
	"storvbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// productFilter reads ?category, ?search and ?inStock. An unparsable inStock
// is ignored rather than rejected.
func productFilter(r *http.Request) product.Filter {
	q := r.URL.Query()
	f := product.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if v := q.Get("inStock"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.InStock = &b
		}
	}
	return f
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "handler"),
		zap.String("method", "ListProducts"),
	)

	views, err := h.ProductSvc.ListProducts(ctx, productFilter(r), utils.GetPriceTierFromContext(ctx))
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"products": views,
		"count":    len(views),
		"source":   h.ProductSvc.SourceName(),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	v, err := h.ProductSvc.GetProductBySlugOrSku(ctx, chi.URLParam(r, "key"), utils.GetPriceTierFromContext(ctx))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var filter *string
	if q := strings.TrimSpace(r.URL.Query().Get("search")); q != "" {
		filter = &q
	}

	categories, err := h.CategorySvc.GetCategories(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}
