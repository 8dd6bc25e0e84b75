package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem snapshots what the storefront showed when the item was added.
// UnitPrice is in minor units.
type LineItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	VariantID   string `json:"variantId,omitempty"`
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"minQuantity"`
	MaxQuantity int    `json:"maxQuantity"`
	Backorder   bool   `json:"backorder"`
}

func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

func (li LineItem) sameProduct(productID, variantID string) bool {
	return li.ProductID == productID && li.VariantID == variantID
}

type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalMinor is the sum of line subtotals in minor units. No tax or shipping.
func TotalMinor(c *Cart) int64 {
	var total int64
	for _, li := range c.Items {
		total += li.Subtotal()
	}
	return total
}

// Total is TotalMinor in major units.
func Total(c *Cart) decimal.Decimal {
	return decimal.New(TotalMinor(c), -2)
}

// ItemCount sums quantities, not distinct lines.
func ItemCount(c *Cart) int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

func clamp(qty, lo, hi int) int {
	if qty < lo {
		return lo
	}
	if qty > hi {
		return hi
	}
	return qty
}

type AddInput struct {
	ProductKey string `json:"productKey"`
	VariantID  string `json:"variantId,omitempty"`
	Quantity   int    `json:"quantity"`
}

type ItemSummary struct {
	LineItem
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summary is the response shape: items with derived subtotals and totals.
type Summary struct {
	ID        string          `json:"id"`
	Items     []ItemSummary   `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func Summarize(c *Cart) Summary {
	items := make([]ItemSummary, 0, len(c.Items))
	for _, li := range c.Items {
		items = append(items, ItemSummary{
			LineItem: li,
			Price:    decimal.New(li.UnitPrice, -2),
			Subtotal: decimal.New(li.Subtotal(), -2),
		})
	}
	return Summary{
		ID:        c.ID,
		Items:     items,
		ItemCount: ItemCount(c),
		Total:     Total(c),
		UpdatedAt: c.UpdatedAt,
	}
}
