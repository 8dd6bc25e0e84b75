package handler

import (
	"net/http"

	"storvbox-be/internal/cart"
	"storvbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func withCartID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.WithCartID(r.Context(), chi.URLParam(r, "cartID"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeCart(w http.ResponseWriter, code int, c *cart.Cart) {
	utils.WriteJSON(w, code, cart.Summarize(c))
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.CartSvc.CreateCart(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusCreated, c)
}

// GetCart may answer with a different id when the requested cart expired.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.CartSvc.GetCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusOK, c)
}

func (h *Handler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in cart.AddInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	c, err := h.CartSvc.AddLineItem(ctx, chi.URLParam(r, "cartID"), in, utils.GetPriceTierFromContext(ctx))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusOK, c)
}

func (h *Handler) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	var in quantityRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	c, err := h.CartSvc.UpdateLineItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "lineItemID"), in.Quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusOK, c)
}

func (h *Handler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.CartSvc.RemoveLineItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "lineItemID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusOK, c)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.CartSvc.ClearCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeCart(w, http.StatusOK, c)
}
