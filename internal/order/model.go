package order

import (
	"strings"
	"time"

	"storvbox-be/internal/address"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending          Status = "pending"
	StatusProcessing       Status = "processing"
	StatusShipped          Status = "shipped"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
	StatusAnnulled         Status = "annulled"
	StatusBackorderPending Status = "backorder_pending"

	// StatusPendingPayment is how customers see StatusPending.
	StatusPendingPayment Status = "pending_payment"
)

// Statuses lists the values staff may set.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusAnnulled,
	StatusBackorderPending,
}

// ParseStatus accepts the staff values plus the customer-facing alias.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == StatusPendingPayment {
		return StatusPending, true
	}
	for _, v := range Statuses {
		if v == st {
			return st, true
		}
	}
	return "", false
}

func (s Status) Public() Status {
	if s == StatusPending {
		return StatusPendingPayment
	}
	return s
}

func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

func (s Status) CountsAsRevenue() bool {
	return s == StatusProcessing || s == StatusShipped || s == StatusDelivered
}

// Item is a snapshot of a cart line at checkout time.
type Item struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Backorder bool            `json:"backorder,omitempty"`
}

type Order struct {
	ID              string                  `json:"id"`
	OrderNumber     string                  `json:"orderNumber"`
	UserID          string                  `json:"userId"`
	UserEmail       string                  `json:"userEmail"`
	UserName        string                  `json:"userName"`
	Items           []Item                  `json:"items"`
	Total           decimal.Decimal         `json:"total"`
	ShippingAddress address.ShippingAddress `json:"shippingAddress"`
	DeliveryMethod  address.DeliveryMethod  `json:"deliveryMethod"`
	Notes           string                  `json:"notes"`
	AdminNotes      *string                 `json:"adminNotes,omitempty"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Status          Status                  `json:"status"`
	HasBackorder    bool                    `json:"hasBackorder"`
	UpdatedBy       *string                 `json:"updatedBy,omitempty"`
	AnnulledAt      *time.Time              `json:"annulledAt,omitempty"`
	AnnulledBy      *string                 `json:"annulledBy,omitempty"`
	AnnulmentReason *string                 `json:"annulmentReason,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// Customer is the owner snapshot taken from the session.
type Customer struct {
	ID    string
	Email string
	Name  string
}

type CheckoutInput struct {
	ShippingAddress address.ShippingAddress `json:"shippingAddress"`
	DeliveryMethod  address.DeliveryMethod  `json:"deliveryMethod"`
	Notes           string                  `json:"notes"`
}

type ListFilter struct {
	Status *Status
	Limit  int
	Skip   int
}

type Page struct {
	Orders     []*Order `json:"orders"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
}

type StatusUpdate struct {
	Status     *Status
	AdminNotes *string
	UpdatedBy  string
}

type Stats struct {
	TotalOrders int             `json:"totalOrders"`
	ByStatus    map[Status]int  `json:"byStatus"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// RevenueStatuses lists the statuses whose totals count as revenue.
func RevenueStatuses() []string {
	out := make([]string, 0, len(Statuses))
	for _, st := range Statuses {
		if st.CountsAsRevenue() {
			out = append(out, string(st))
		}
	}
	return out
}

// Revenue sums totals of orders that are paid for or on their way.
func Revenue(orders []*Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status.CountsAsRevenue() {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}
