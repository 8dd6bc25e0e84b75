package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"storvbox-be/internal/analytics"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTTL = 30 * 24 * time.Hour

// ProductLookup is satisfied by product.Service.
type ProductLookup interface {
	GetProductBySlugOrSku(ctx context.Context, key, tier string) (*product.View, error)
}

// Service defines the business logic for carts. Unknown or expired cart ids
// are never an error: a fresh cart is created instead.
type Service interface {
	CreateCart(ctx context.Context) (*Cart, error)
	GetCart(ctx context.Context, cartID string) (*Cart, error)
	FindCart(ctx context.Context, cartID string) (*Cart, error)
	AddLineItem(ctx context.Context, cartID string, in AddInput, tier string) (*Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*Cart, error)
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*Cart, error)
	ClearCart(ctx context.Context, cartID string) (*Cart, error)
}

type Options struct {
	TTL     time.Duration
	Tracker analytics.Tracker
}

type service struct {
	repo     Repository
	products ProductLookup
	ttl      time.Duration
	tracker  analytics.Tracker
	now      func() time.Time
}

func NewService(repo Repository, products ProductLookup, opts Options) Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Tracker == nil {
		opts.Tracker = analytics.Nop{}
	}
	return &service{
		repo:     repo,
		products: products,
		ttl:      opts.TTL,
		tracker:  opts.Tracker,
		now:      time.Now,
	}
}

func (s *service) CreateCart(ctx context.Context) (*Cart, error) {
	c := &Cart{ID: uuid.NewString(), Items: []LineItem{}}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("cart created", zap.String("cart_id", c.ID))
	return c, nil
}

func (s *service) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	return s.load(ctx, cartID)
}

// FindCart is the read-only GetCart: a missing or expired cart comes back
// empty and nothing is written.
func (s *service) FindCart(ctx context.Context, cartID string) (*Cart, error) {
	empty := &Cart{ID: cartID, Items: []LineItem{}}
	if strings.TrimSpace(cartID) == "" {
		return empty, nil
	}

	c, err := s.repo.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	if s.now().Sub(c.UpdatedAt) > s.ttl {
		return empty, nil
	}
	return c, nil
}

// load resolves cartID, recreating the cart when it is missing or expired.
func (s *service) load(ctx context.Context, cartID string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("cart_id", cartID),
	)

	if strings.TrimSpace(cartID) == "" {
		return s.CreateCart(ctx)
	}

	c, err := s.repo.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		log.Info("cart not found, starting a fresh one")
		return s.CreateCart(ctx)
	}
	if err != nil {
		return nil, err
	}

	if s.now().Sub(c.UpdatedAt) > s.ttl {
		log.Info("cart expired, starting a fresh one", zap.Time("updated_at", c.UpdatedAt))
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			log.Warn("failed to delete expired cart", zap.Error(err))
		}
		return s.CreateCart(ctx)
	}

	return c, nil
}

func (s *service) AddLineItem(ctx context.Context, cartID string, in AddInput, tier string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddLineItem"),
		zap.String("product_key", in.ProductKey),
	)

	if strings.TrimSpace(in.ProductKey) == "" {
		return nil, ErrMissingProduct
	}

	// 1️⃣ Resolve product (priced for the caller's tier)
	p, err := s.products.GetProductBySlugOrSku(ctx, in.ProductKey, tier)
	if err != nil {
		return nil, err
	}
	if !p.InStock {
		log.Info("product out of stock")
		return nil, ErrProductUnavailable
	}

	// The view price is already resolved for the caller's tier. Engine variants
	// double as tier prices, so a variant only selects the SKU.
	unitPrice := product.ToMinor(p.Price)
	sku := p.SKU
	if in.VariantID != "" {
		variant, ok := p.Variant(in.VariantID)
		if !ok {
			return nil, ErrUnknownVariant
		}
		if variant.SKU != "" {
			sku = variant.SKU
		}
	}
	quantity := clamp(in.Quantity, 0, p.MaxQuantity)

	// 2️⃣ Load cart
	c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	// 3️⃣ Merge with an existing line or append, clamping to the product bounds
	merged := false
	for i := range c.Items {
		li := &c.Items[i]
		if !li.sameProduct(p.ID, in.VariantID) {
			continue
		}
		li.MinQuantity, li.MaxQuantity = p.MinQuantity, p.MaxQuantity
		li.Quantity = clamp(li.Quantity+quantity, li.MinQuantity, li.MaxQuantity)
		li.UnitPrice = unitPrice
		li.Backorder = p.StockStatus == product.StockBackorder
		merged = true
		break
	}

	if !merged {
		c.Items = append(c.Items, LineItem{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			VariantID:   in.VariantID,
			SKU:         sku,
			Title:       p.Name,
			Thumbnail:   p.Image,
			UnitPrice:   unitPrice,
			Quantity:    clamp(quantity, p.MinQuantity, p.MaxQuantity),
			MinQuantity: p.MinQuantity,
			MaxQuantity: p.MaxQuantity,
			Backorder:   p.StockStatus == product.StockBackorder,
		})
	}

	// 4️⃣ Persist
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, analytics.EventAddToCart, analytics.Properties{
		"cartId":    c.ID,
		"productId": p.ID,
		"quantity":  in.Quantity,
	})

	log.Info("line item added", zap.String("cart_id", c.ID), zap.Bool("merged", merged))
	return c, nil
}

// UpdateLineItem treats quantity <= 0 as a removal.
func (s *service) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveLineItem(ctx, cartID, lineItemID)
	}

	c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(c, lineItemID)
	if idx < 0 {
		return nil, ErrLineItemNotFound
	}

	li := &c.Items[idx]
	li.Quantity = clamp(quantity, li.MinQuantity, li.MaxQuantity)

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveLineItem is idempotent: an unknown line leaves the cart untouched.
func (s *service) RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*Cart, error) {
	c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(c, lineItemID)
	if idx < 0 {
		return c, nil
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClearCart drops the cart and hands back a new empty one.
func (s *service) ClearCart(ctx context.Context, cartID string) (*Cart, error) {
	if cartID != "" {
		if err := s.repo.Delete(ctx, cartID); err != nil {
			return nil, err
		}
	}
	return s.CreateCart(ctx)
}

func indexOf(c *Cart, lineItemID string) int {
	for i, li := range c.Items {
		if li.ID == lineItemID {
			return i
		}
	}
	return -1
}
