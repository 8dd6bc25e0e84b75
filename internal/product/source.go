package product

import (
	"context"
	"errors"
	"strings"

	"storvbox-be/internal/apperr"
	"storvbox-be/internal/commerce"
	"storvbox-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	SourceStore    = "store"
	SourceCommerce = "commerce"

	placeholderImage = "/placeholder-product.svg"
)

// Source is where the storefront reads its catalog from.
type Source interface {
	Name() string
	List(ctx context.Context, f Filter, tier string) ([]View, error)
	Get(ctx context.Context, key, tier string) (*View, error)
}

// CommerceClient is satisfied by *commerce.Client.
type CommerceClient interface {
	ListProducts(ctx context.Context) ([]commerce.Product, error)
	GetProductByHandle(ctx context.Context, key string) (*commerce.Product, error)
	CreateProduct(ctx context.Context, in commerce.ProductInput) (*commerce.Product, error)
	Currency() string
}

// NewSource returns the catalog source named by CATALOG_SOURCE.
func NewSource(name string, repo Repository, client CommerceClient) Source {
	if name == SourceCommerce && client != nil {
		return &commerceSource{client: client}
	}
	return &storeSource{repo: repo}
}

// ----------------- Store records -----------------

type storeSource struct {
	repo Repository
}

func (s *storeSource) Name() string { return SourceStore }

func (s *storeSource) List(ctx context.Context, f Filter, tier string) ([]View, error) {
	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(products))
	for _, p := range products {
		views = append(views, ViewFromProduct(p, tier))
	}
	return views, nil
}

func (s *storeSource) Get(ctx context.Context, key, tier string) (*View, error) {
	p, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive {
		return nil, ErrProductNotFound
	}
	v := ViewFromProduct(p, tier)
	return &v, nil
}

func stockStatus(quantity int, allowBackorder bool) StockStatus {
	switch {
	case quantity > 0:
		return StockInStock
	case allowBackorder:
		return StockBackorder
	default:
		return StockOutOfStock
	}
}

func ViewFromProduct(p *Product, tier string) View {
	minQty, maxQty := boundsOrDefault(p.MinQuantity, p.MaxQuantity)
	status := stockStatus(p.Quantity, p.AllowBackorder)

	images := p.Images
	if len(images) == 0 {
		images = []string{placeholderImage}
	}
	category := p.Category
	if category == "" {
		category = defaultCategory
	}

	return View{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		SKU:         p.SKU,
		Description: p.Description,
		Image:       images[0],
		Images:      images,
		Price:       ResolvePrice(p.PriceTiers, p.Price, tier),
		Category:    category,
		InStock:     status != StockOutOfStock,
		StockStatus: status,
		Stock:       p.Quantity,
		MinQuantity: minQty,
		MaxQuantity: maxQty,
		Variants:    []VariantView{},
		Source:      SourceStore,
	}
}

// ----------------- Commerce engine -----------------

type commerceSource struct {
	client CommerceClient
}

func (s *commerceSource) Name() string { return SourceCommerce }

func (s *commerceSource) List(ctx context.Context, f Filter, tier string) ([]View, error) {
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("commerce catalog unavailable", zap.Error(err))
		return nil, apperr.Upstream(err)
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	views := make([]View, 0, len(products))
	for i := range products {
		v := ViewFromCommerce(&products[i], tier)

		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(v.Name), search) &&
			!strings.Contains(strings.ToLower(v.Description), search) {
			continue
		}
		if f.InStock != nil && v.InStock != *f.InStock {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *commerceSource) Get(ctx context.Context, key, tier string) (*View, error) {
	p, err := s.client.GetProductByHandle(ctx, key)
	if errors.Is(err, commerce.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	v := ViewFromCommerce(p, tier)
	return &v, nil
}

// ViewFromCommerce maps an engine product. Each variant title doubles as a
// tier name, so "VIP" variants price VIP customers.
func ViewFromCommerce(p *commerce.Product, tier string) View {
	variants := make([]VariantView, 0, len(p.Variants))
	tiers := make([]TierPrice, 0, len(p.Variants))
	stock := 0
	backorder := false
	unmanaged := false

	for _, v := range p.Variants {
		price := FromMinor(v.Amount())
		variants = append(variants, VariantView{
			ID:                v.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             price,
			InventoryQuantity: v.InventoryQuantity,
		})
		tiers = append(tiers, TierPrice{TierName: strings.ToLower(v.Title), Price: price})

		stock += v.InventoryQuantity
		switch {
		case !v.ManageInventory:
			unmanaged = true
		case v.AllowBackorder:
			backorder = true
		}
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}
	if len(images) == 0 && p.Thumbnail != "" {
		images = append(images, p.Thumbnail)
	}
	if len(images) == 0 {
		images = append(images, placeholderImage)
	}

	category := defaultCategory
	if p.Collection != nil && p.Collection.Title != "" {
		category = p.Collection.Title
	} else if p.Type != nil && p.Type.Value != "" {
		category = p.Type.Value
	}

	sku := ""
	if len(p.Variants) > 0 {
		sku = p.Variants[0].SKU
	}

	// unmanaged inventory never runs out
	status := stockStatus(stock, backorder)
	if unmanaged {
		status = StockInStock
	}
	minQty, maxQty := boundsOrDefault(metadataInt(p.Metadata, "min_quantity"), metadataInt(p.Metadata, "max_quantity"))

	return View{
		ID:          p.ID,
		Name:        p.Title,
		Slug:        p.Handle,
		SKU:         sku,
		Description: p.Description,
		Image:       images[0],
		Images:      images,
		Price:       ResolvePrice(tiers, decimal.NullDecimal{}, tier),
		Category:    category,
		InStock:     status != StockOutOfStock,
		StockStatus: status,
		Stock:       stock,
		MinQuantity: minQty,
		MaxQuantity: maxQty,
		Variants:    variants,
		Source:      SourceCommerce,
	}
}

func metadataInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
