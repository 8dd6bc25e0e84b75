package handler

import (
	"time"

	"storvbox-be/internal/address"
	"storvbox-be/internal/order"
	"storvbox-be/internal/payment"

	"github.com/shopspring/decimal"
)

// customerOrder is what the order owner sees: no staff notes, no audit
// fields, and pending exposed as pending_payment.
type customerOrder struct {
	ID              string                  `json:"id"`
	OrderNumber     string                  `json:"orderNumber"`
	Items           []order.Item            `json:"items"`
	Total           decimal.Decimal         `json:"total"`
	ShippingAddress address.ShippingAddress `json:"shippingAddress"`
	DeliveryMethod  address.DeliveryMethod  `json:"deliveryMethod"`
	Notes           string                  `json:"notes,omitempty"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Status          order.Status            `json:"status"`
	HasBackorder    bool                    `json:"hasBackorder"`
	AnnulmentReason *string                 `json:"annulmentReason,omitempty"`
	Payment         *payment.Instructions   `json:"payment,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func toCustomerOrder(o *order.Order) customerOrder {
	return customerOrder{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Items:           o.Items,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		DeliveryMethod:  o.DeliveryMethod,
		Notes:           o.Notes,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status.Public(),
		HasBackorder:    o.HasBackorder,
		AnnulmentReason: o.AnnulmentReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toCustomerOrders(orders []*order.Order) []customerOrder {
	list := make([]customerOrder, 0, len(orders))
	for _, o := range orders {
		list = append(list, toCustomerOrder(o))
	}
	return list
}

// withPayment attaches bank transfer instructions while the order awaits payment.
func (h *Handler) withPayment(o *order.Order) customerOrder {
	view := toCustomerOrder(o)
	if o.Status == order.StatusPending {
		instructions := h.OrderSvc.PaymentInstructions(o)
		view.Payment = &instructions
	}
	return view
}
