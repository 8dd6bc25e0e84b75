package handler

import (
	"net/http"

	"storvbox-be/internal/logger"
	"storvbox-be/internal/order"
	"storvbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	CartID string `json:"cartId"`
	order.CheckoutInput
}

type statusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

func customerOf(id utils.Identity) order.Customer {
	return order.Customer{ID: id.UserID, Email: id.Email, Name: id.Name}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := utils.IdentityFromContext(ctx)
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "handler"),
		zap.String("method", "CreateOrder"),
	)

	var in checkoutRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}
	if in.CartID == "" {
		utils.WriteError(w, order.ErrEmptyCart)
		return
	}
	ctx = utils.WithCartID(ctx, in.CartID)

	o, err := h.OrderSvc.CreateOrder(ctx, customerOf(id), in.CartID, in.CheckoutInput)
	if err != nil {
		log.Info("checkout failed", zap.String("cart_id", in.CartID), zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   h.withPayment(o),
	})
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	orders, err := h.OrderSvc.ListForCustomer(ctx, userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"orders": toCustomerOrders(orders)})
}

func (h *Handler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	o, err := h.OrderSvc.GetForCustomer(ctx, chi.URLParam(r, "orderID"), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.withPayment(o))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	o, err := h.OrderSvc.CancelOrder(ctx, chi.URLParam(r, "orderID"), userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": toCustomerOrder(o)})
}

// UpdateOrderStatus is the staff path reachable with an admin-role customer
// session. The admin panel uses AdminUpdateOrder.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := utils.IdentityFromContext(ctx)

	var in statusRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	o, err := h.OrderSvc.UpdateStatus(ctx, chi.URLParam(r, "orderID"), in.Status, in.AdminNotes, id.Email)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}
