package commerce

// Amounts coming from the engine are in minor units.

type Image struct {
	URL string `json:"url"`
}

type Collection struct {
	Title string `json:"title"`
}

type ProductType struct {
	Value string `json:"value"`
}

type CalculatedPrice struct {
	CalculatedAmount int64  `json:"calculated_amount"`
	CurrencyCode     string `json:"currency_code"`
}

type VariantOption struct {
	Value  string `json:"value"`
	Option *struct {
		Title string `json:"title"`
	} `json:"option,omitempty"`
}

type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku"`
	InventoryQuantity int              `json:"inventory_quantity"`
	ManageInventory   bool             `json:"manage_inventory"`
	AllowBackorder    bool             `json:"allow_backorder"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price,omitempty"`
	Options           []VariantOption  `json:"options,omitempty"`
}

// Amount returns the calculated price in minor units, zero when unpriced.
func (v Variant) Amount() int64 {
	if v.CalculatedPrice == nil {
		return 0
	}
	return v.CalculatedPrice.CalculatedAmount
}

type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Handle      string         `json:"handle"`
	Description string         `json:"description"`
	Thumbnail   string         `json:"thumbnail"`
	Images      []Image        `json:"images"`
	Collection  *Collection    `json:"collection,omitempty"`
	Type        *ProductType   `json:"type,omitempty"`
	Variants    []Variant      `json:"variants"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type productListResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

type productResponse struct {
	Product Product `json:"product"`
}

type PriceInput struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

type VariantInput struct {
	Title           string       `json:"title"`
	SKU             string       `json:"sku,omitempty"`
	ManageInventory bool         `json:"manage_inventory"`
	AllowBackorder  bool         `json:"allow_backorder"`
	Prices          []PriceInput `json:"prices"`
}

// ProductInput is the admin payload used to publish a catalog record.
type ProductInput struct {
	Title       string         `json:"title"`
	Handle      string         `json:"handle"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	Images      []Image        `json:"images,omitempty"`
	Options     []OptionInput  `json:"options"`
	Variants    []VariantInput `json:"variants"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type OptionInput struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}
