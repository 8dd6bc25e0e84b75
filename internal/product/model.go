package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultMinQuantity = 1
	DefaultMaxQuantity = 5000
	LowStockThreshold  = 10

	defaultCategory = "Други"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDraft || s == StatusArchived
}

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockBackorder  StockStatus = "backorder"
	StockOutOfStock StockStatus = "out_of_stock"
)

type TierPrice struct {
	TierName string          `json:"tierName"`
	Price    decimal.Decimal `json:"price"`
}

// Product is a catalog record owned by this store. Price is nullable: a
// record may be priced only through its tiers.
type Product struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	SKU            string              `json:"sku"`
	Description    string              `json:"description"`
	Images         []string            `json:"images"`
	Price          decimal.NullDecimal `json:"price"`
	PriceTiers     []TierPrice         `json:"priceTiers"`
	Category       string              `json:"category"`
	Quantity       int                 `json:"quantity"`
	AllowBackorder bool                `json:"allowBackorder"`
	MinQuantity    int                 `json:"minQuantity"`
	MaxQuantity    int                 `json:"maxQuantity"`
	Status         Status              `json:"status"`
	CommerceID     *string             `json:"commerceId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type VariantView struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventoryQuantity"`
}

// View is the normalized shape served to the storefront and the cart,
// whichever source the record came from. Price is already resolved for
// the caller's tier.
type View struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	StockStatus StockStatus     `json:"stockStatus"`
	Stock       int             `json:"stock"`
	MinQuantity int             `json:"minQuantity"`
	MaxQuantity int             `json:"maxQuantity"`
	Variants    []VariantView   `json:"variants"`
	Source      string          `json:"source"`
}

// Variant returns the variant with the given id, if any.
func (v *View) Variant(id string) (VariantView, bool) {
	for _, vv := range v.Variants {
		if vv.ID == id {
			return vv, true
		}
	}
	return VariantView{}, false
}

type Filter struct {
	Category string
	Search   string
	InStock  *bool
	// IncludeInactive is set by the admin panel only.
	IncludeInactive bool
}

type CreateInput struct {
	Name           string           `json:"name"`
	Slug           string           `json:"slug,omitempty"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description,omitempty"`
	Images         []string         `json:"images,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	PriceTiers     []TierPrice      `json:"priceTiers,omitempty"`
	Category       string           `json:"category,omitempty"`
	Quantity       int              `json:"quantity"`
	AllowBackorder bool             `json:"allowBackorder"`
	MinQuantity    int              `json:"minQuantity,omitempty"`
	MaxQuantity    int              `json:"maxQuantity,omitempty"`
	Status         Status           `json:"status,omitempty"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name           *string          `json:"name,omitempty"`
	SKU            *string          `json:"sku,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	PriceTiers     *[]TierPrice     `json:"priceTiers,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Quantity       *int             `json:"quantity,omitempty"`
	AllowBackorder *bool            `json:"allowBackorder,omitempty"`
	MinQuantity    *int             `json:"minQuantity,omitempty"`
	MaxQuantity    *int             `json:"maxQuantity,omitempty"`
	Status         *Status          `json:"status,omitempty"`
}

func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.SKU == nil && in.Description == nil && in.Price == nil &&
		in.PriceTiers == nil && in.Category == nil && in.Quantity == nil &&
		in.AllowBackorder == nil && in.MinQuantity == nil && in.MaxQuantity == nil && in.Status == nil
}

type Stats struct {
	TotalProducts int `json:"totalProducts"`
	TotalQuantity int `json:"totalQuantity"`
	LowStockCount int `json:"lowStockCount"`
}

type AdminList struct {
	Products []*Product `json:"products"`
	Stats    Stats      `json:"stats"`
}
