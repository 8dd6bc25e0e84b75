package handler

import (
	"net/http"
	"testing"

	"storvbox-be/internal/address"
	"storvbox-be/internal/auth"
	"storvbox-be/internal/order"
	"storvbox-be/internal/payment"
	"storvbox-be/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleOrder(status order.Status) *order.Order {
	return &order.Order{
		ID:          "order-1",
		OrderNumber: "ORD-20250501-120000-000-0001",
		UserID:      "user-1",
		UserEmail:   "alice@example.com",
		Items: []order.Item{
			{ProductID: "p-1", SKU: "SKU-1", Name: "Тениска", Quantity: 10,
				UnitPrice: decimal.RequireFromString("25.50"), Subtotal: decimal.RequireFromString("255.00")},
		},
		Total:         decimal.RequireFromString("255.00"),
		PaymentMethod: payment.MethodBankTransfer,
		Status:        status,
		AdminNotes:    utils.StrPtr("internal note"),
		UpdatedBy:     utils.StrPtr("admin@storvbox.bg"),
	}
}

func TestListMyOrders_RequiresSession(t *testing.T) {
	h, d := newTestHandler()

	rr := doJSON(t, newRouter(h), http.MethodGet, "/api/orders", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	body := decodeBody(t, rr)
	assert.NotContains(t, body, "orders")
	d.orders.AssertNotCalled(t, "ListForCustomer", mock.Anything, mock.Anything)
}

func TestListMyOrders(t *testing.T) {
	h, d := newTestHandler()
	d.orders.On("ListForCustomer", mock.Anything, "user-1").
		Return([]*order.Order{sampleOrder(order.StatusShipped)}, nil)

	rr := doJSON(t, newRouter(h), http.MethodGet, "/api/orders", nil,
		withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

	assert.Equal(t, http.StatusOK, rr.Code)
	orders := decodeBody(t, rr)["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, "shipped", orders[0].(map[string]any)["status"])
	assert.NotContains(t, rr.Body.String(), "internal note")
}

func TestGetMyOrder(t *testing.T) {
	t.Run("Hides staff fields and adds payment instructions", func(t *testing.T) {
		h, d := newTestHandler()
		o := sampleOrder(order.StatusPending)
		d.orders.On("GetForCustomer", mock.Anything, "order-1", "user-1").Return(o, nil)
		d.orders.On("PaymentInstructions", o).Return(payment.Instructions{
			Method:    payment.MethodBankTransfer,
			IBAN:      "BG80BNBG96611020345678",
			Reference: o.OrderNumber,
		})

		rr := doJSON(t, newRouter(h), http.MethodGet, "/api/orders/order-1", nil,
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "pending_payment", body["status"])
		assert.NotContains(t, body, "adminNotes")
		assert.NotContains(t, body, "updatedBy")
		require.Contains(t, body, "payment")
		assert.Equal(t, o.OrderNumber, body["payment"].(map[string]any)["reference"])
	})

	t.Run("Someone else's order", func(t *testing.T) {
		h, d := newTestHandler()
		d.orders.On("GetForCustomer", mock.Anything, "order-2", "user-1").Return(nil, order.ErrOrderNotFound)

		rr := doJSON(t, newRouter(h), http.MethodGet, "/api/orders/order-2", nil,
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestCreateOrder(t *testing.T) {
	checkout := order.CheckoutInput{
		ShippingAddress: address.ShippingAddress{
			FullName:    "Алиса Иванова",
			Phone:       "+359888123456",
			AddressLine: "ул. Витоша 1",
			City:        "София",
			PostalCode:  "1000",
		},
		DeliveryMethod: address.DeliveryCourier,
	}

	t.Run("Missing cart id", func(t *testing.T) {
		h, d := newTestHandler()

		rr := doJSON(t, newRouter(h), http.MethodPost, "/api/orders",
			checkoutRequest{CheckoutInput: checkout},
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		h, d := newTestHandler()
		o := sampleOrder(order.StatusPending)
		customer := order.Customer{ID: "user-1", Email: "alice@example.com", Name: "Alice"}
		d.orders.On("CreateOrder", mock.Anything, customer, "cart-1", checkout).Return(o, nil)
		d.orders.On("PaymentInstructions", o).Return(payment.Instructions{Method: payment.MethodBankTransfer})

		rr := doJSON(t, newRouter(h), http.MethodPost, "/api/orders",
			checkoutRequest{CartID: "cart-1", CheckoutInput: checkout},
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusCreated, rr.Code)
		created := decodeBody(t, rr)["order"].(map[string]any)
		assert.Equal(t, "pending_payment", created["status"])
		assert.Equal(t, "255", created["total"])
		d.orders.AssertExpectations(t)
	})

	t.Run("Anonymous checkout is rejected", func(t *testing.T) {
		h, d := newTestHandler()

		rr := doJSON(t, newRouter(h), http.MethodPost, "/api/orders",
			checkoutRequest{CartID: "cart-1", CheckoutInput: checkout})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		d.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("Cancellable", func(t *testing.T) {
		h, d := newTestHandler()
		d.orders.On("CancelOrder", mock.Anything, "order-1", "user-1").Return(sampleOrder(order.StatusCancelled), nil)

		rr := doJSON(t, newRouter(h), http.MethodPost, "/api/orders/order-1/cancel", nil,
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "cancelled", decodeBody(t, rr)["order"].(map[string]any)["status"])
	})

	t.Run("Already shipped", func(t *testing.T) {
		h, d := newTestHandler()
		d.orders.On("CancelOrder", mock.Anything, "order-1", "user-1").Return(nil, order.ErrNotCancellable)

		rr := doJSON(t, newRouter(h), http.MethodPost, "/api/orders/order-1/cancel", nil,
			withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUpdateOrderStatus_CustomerForbidden(t *testing.T) {
	h, d := newTestHandler()

	rr := doJSON(t, newRouter(h), http.MethodPatch, "/api/orders/order-1/status",
		statusRequest{Status: "shipped"},
		withCookie(sessionCookie(t, h, auth.RoleCustomer, "standard")))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	d.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_AdminSession(t *testing.T) {
	h, d := newTestHandler()
	d.orders.On("UpdateStatus", mock.Anything, "order-1", "shipped", (*string)(nil), "alice@example.com").
		Return(sampleOrder(order.StatusShipped), nil)

	rr := doJSON(t, newRouter(h), http.MethodPatch, "/api/orders/order-1/status",
		statusRequest{Status: "shipped"},
		withCookie(sessionCookie(t, h, auth.RoleAdmin, "standard")))

	assert.Equal(t, http.StatusOK, rr.Code)
	d.orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	h, d := newTestHandler()
	d.orders.On("UpdateStatus", mock.Anything, "order-1", "lost", (*string)(nil), "alice@example.com").
		Return(nil, order.ErrInvalidStatus)

	rr := doJSON(t, newRouter(h), http.MethodPatch, "/api/orders/order-1/status",
		statusRequest{Status: "lost"},
		withCookie(sessionCookie(t, h, auth.RoleAdmin, "standard")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
