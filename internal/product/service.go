package product

import (
	"context"
	"strings"
	"time"

	"storvbox-be/internal/apperr"
	"storvbox-be/internal/commerce"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/user"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	ListProducts(ctx context.Context, f Filter, tier string) ([]View, error)
	GetProductBySlugOrSku(ctx context.Context, key, tier string) (*View, error)
	SourceName() string

	AdminList(ctx context.Context) (*AdminList, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) (*Product, error)
}

// Publisher pushes store records to the commerce engine.
type Publisher interface {
	CreateProduct(ctx context.Context, in commerce.ProductInput) (*commerce.Product, error)
	Currency() string
}

type service struct {
	repo      Repository
	source    Source
	publisher Publisher
}

// NewService wires the storefront source and the admin store. publisher may
// be nil when no commerce admin token is configured.
func NewService(repo Repository, source Source, publisher Publisher) Service {
	return &service{repo: repo, source: source, publisher: publisher}
}

func (s *service) SourceName() string { return s.source.Name() }

func (s *service) ListProducts(ctx context.Context, f Filter, tier string) ([]View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
		zap.String("source", s.source.Name()),
	)

	start := time.Now()
	f.IncludeInactive = false

	views, err := s.source.List(ctx, f, tier)
	if err != nil {
		log.Error("failed to fetch product list", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(views)),
		zap.Duration("duration", time.Since(start)),
	)
	return views, nil
}

func (s *service) GetProductBySlugOrSku(ctx context.Context, key, tier string) (*View, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrProductNotFound
	}
	return s.source.Get(ctx, key, tier)
}

func (s *service) AdminList(ctx context.Context) (*AdminList, error) {
	products, err := s.repo.List(ctx, Filter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	return &AdminList{Products: products, Stats: ComputeStats(products)}, nil
}

// ComputeStats counts a product as low stock below LowStockThreshold units.
func ComputeStats(products []*Product) Stats {
	stats := Stats{TotalProducts: len(products)}
	for _, p := range products {
		stats.TotalQuantity += p.Quantity
		if p.Quantity < LowStockThreshold {
			stats.LowStockCount++
		}
	}
	return stats
}

func validTier(name string) bool {
	return user.PriceTier(name).Valid()
}

func validateTiers(v *utils.Validator, tiers []TierPrice) {
	for _, t := range tiers {
		v.Check(validTier(t.TierName), "priceTiers", "Невалидно ценово ниво: "+t.TierName)
		v.Check(!t.Price.IsNegative(), "priceTiers", "Цената не може да е отрицателна")
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	var v utils.Validator
	v.Length(in.Name, 2, 200, "name", "Името трябва да е между 2 и 200 символа")
	v.Required(in.SKU, "sku", "SKU е задължително")
	v.Check(in.Quantity >= 0, "quantity", "Количеството не може да е отрицателно")
	v.Check(in.Price == nil || !in.Price.IsNegative(), "price", "Цената не може да е отрицателна")
	v.Check(in.MinQuantity >= 0, "minQuantity", "Невалидно минимално количество")
	v.Check(in.MaxQuantity == 0 || in.MaxQuantity >= in.MinQuantity, "maxQuantity", "Максималното количество е по-малко от минималното")
	v.Check(in.Status == "" || in.Status.Valid(), "status", "Невалиден статус")
	validateTiers(&v, in.PriceTiers)
	if err := v.Err(); err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	minQty, maxQty := boundsOrDefault(in.MinQuantity, in.MaxQuantity)

	p := &Product{
		Name:           strings.TrimSpace(in.Name),
		Slug:           slug,
		SKU:            strings.TrimSpace(in.SKU),
		Description:    strings.TrimSpace(in.Description),
		Images:         in.Images,
		PriceTiers:     in.PriceTiers,
		Category:       strings.TrimSpace(in.Category),
		Quantity:       in.Quantity,
		AllowBackorder: in.AllowBackorder,
		MinQuantity:    minQty,
		MaxQuantity:    maxQty,
		Status:         status,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.PriceTiers == nil {
		p.PriceTiers = []TierPrice{}
	}
	if in.Price != nil {
		p.Price.Decimal = *in.Price
		p.Price.Valid = true
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Info("product created by staff", zap.String("product_id", created.ID))
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	if in.Empty() {
		return nil, ErrNothingToSet
	}

	var v utils.Validator
	if in.Name != nil {
		v.Length(*in.Name, 2, 200, "name", "Името трябва да е между 2 и 200 символа")
	}
	if in.SKU != nil {
		v.Required(*in.SKU, "sku", "SKU е задължително")
	}
	if in.Quantity != nil {
		v.Check(*in.Quantity >= 0, "quantity", "Количеството не може да е отрицателно")
	}
	if in.Price != nil {
		v.Check(!in.Price.IsNegative(), "price", "Цената не може да е отрицателна")
	}
	if in.Status != nil {
		v.Check(in.Status.Valid(), "status", "Невалиден статус")
	}
	if in.MinQuantity != nil {
		v.Check(*in.MinQuantity >= 1, "minQuantity", "Невалидно минимално количество")
	}
	if in.MaxQuantity != nil {
		v.Check(*in.MaxQuantity >= 1, "maxQuantity", "Невалидно максимално количество")
	}
	if in.PriceTiers != nil {
		validateTiers(&v, *in.PriceTiers)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product updated by staff", zap.String("product_id", id))
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted by staff", zap.String("product_id", id))
	return nil
}

// Publish creates the store record in the commerce engine, one variant per
// price tier, and remembers the engine id.
func (s *service) Publish(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Publish"),
		zap.String("product_id", id),
	)

	if s.publisher == nil {
		return nil, ErrPublishUnavailable
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CommerceID != nil && *p.CommerceID != "" {
		return nil, ErrAlreadyPublished
	}

	created, err := s.publisher.CreateProduct(ctx, BuildCommerceInput(p, s.publisher.Currency()))
	if err != nil {
		log.Error("failed to publish product", zap.Error(err))
		return nil, apperr.Upstream(err)
	}

	if err := s.repo.SetCommerceID(ctx, p.ID, created.ID); err != nil {
		log.Error("published but failed to store commerce id",
			zap.String("commerce_id", created.ID),
			zap.Error(err),
		)
		return nil, err
	}

	p.CommerceID = &created.ID
	log.Info("product published", zap.String("commerce_id", created.ID))
	return p, nil
}

func BuildCommerceInput(p *Product, currency string) commerce.ProductInput {
	variants := []commerce.VariantInput{}
	values := []string{}

	for _, t := range p.PriceTiers {
		variants = append(variants, commerce.VariantInput{
			Title:           t.TierName,
			SKU:             p.SKU + "-" + strings.ToUpper(t.TierName),
			ManageInventory: true,
			AllowBackorder:  p.AllowBackorder,
			Prices:          []commerce.PriceInput{{Amount: ToMinor(t.Price), CurrencyCode: currency}},
		})
		values = append(values, t.TierName)
	}
	if len(variants) == 0 {
		variants = append(variants, commerce.VariantInput{
			Title:           string(user.TierStandard),
			SKU:             p.SKU,
			ManageInventory: true,
			AllowBackorder:  p.AllowBackorder,
			Prices:          []commerce.PriceInput{{Amount: ToMinor(ResolvePrice(nil, p.Price, "")), CurrencyCode: currency}},
		})
		values = append(values, string(user.TierStandard))
	}

	images := make([]commerce.Image, 0, len(p.Images))
	for _, url := range p.Images {
		images = append(images, commerce.Image{URL: url})
	}

	return commerce.ProductInput{
		Title:       p.Name,
		Handle:      p.Slug,
		Description: p.Description,
		Status:      "published",
		Images:      images,
		Options:     []commerce.OptionInput{{Title: "tier", Values: values}},
		Variants:    variants,
		Metadata: map[string]any{
			"store_id":     p.ID,
			"min_quantity": p.MinQuantity,
			"max_quantity": p.MaxQuantity,
		},
	}
}
