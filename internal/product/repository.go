package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storvbox-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]*Product, error)
	FindByKey(ctx context.Context, key string) (*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	SetCommerceID(ctx context.Context, id, commerceID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, slug, sku, description, images, price, price_tiers, category,
	quantity, allow_backorder, min_quantity, max_quantity, status, commerce_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*Product, error) {
	var (
		p          Product
		imagesJSON []byte
		tiersJSON  []byte
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &imagesJSON, &p.Price, &tiersJSON,
		&p.Category, &p.Quantity, &p.AllowBackorder, &p.MinQuantity, &p.MaxQuantity,
		&p.Status, &p.CommerceID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Images = []string{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	p.PriceTiers = []TierPrice{}
	if len(tiersJSON) > 0 {
		if err := json.Unmarshal(tiersJSON, &p.PriceTiers); err != nil {
			return nil, fmt.Errorf("decode price tiers: %w", err)
		}
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	// ---------- BASE QUERY ----------
	query := `SELECT ` + productColumns + ` FROM products p`

	where := []string{}
	args := []interface{}{}

	// ---------- FILTER ----------
	if !f.IncludeInactive {
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, StatusActive)
	}
	if f.Category != "" {
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)+1))
		args = append(args, f.Category)
	}
	if f.Search != "" {
		n := len(args) + 1
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.sku ILIKE $%d)", n, n, n))
		args = append(args, "%"+f.Search+"%")
	}
	if f.InStock != nil {
		if *f.InStock {
			where = append(where, "(p.quantity > 0 OR p.allow_backorder)")
		} else {
			where = append(where, "(p.quantity <= 0 AND NOT p.allow_backorder)")
		}
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	// ---------- ORDER ----------
	query += " ORDER BY p.created_at DESC"

	log.Debug("Executing List query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed List", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return products, nil
}

// FindByKey looks a product up by slug or SKU.
func (r *repository) FindByKey(ctx context.Context, key string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 OR sku = $1 LIMIT 1`, key)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("sku", p.SKU),
	)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return nil, err
	}
	tiersJSON, err := json.Marshal(p.PriceTiers)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, slug, sku, description, images, price, price_tiers, category,
			quantity, allow_backorder, min_quantity, max_quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+productColumns,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, imagesJSON, p.Price, tiersJSON, p.Category,
		p.Quantity, p.AllowBackorder, p.MinQuantity, p.MaxQuantity, p.Status,
	)

	created, err := scanProduct(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Info("duplicate product", zap.String("constraint", pqErr.Constraint))
			return nil, ErrDuplicateProduct
		}
		log.Error("db: failed to insert product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", created.ID))
	return created, nil
}

// Update builds the SET clause from the non-nil fields only.
func (r *repository) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("product_id", id),
	)

	sets := []string{}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.SKU != nil {
		add("sku", *in.SKU)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Price != nil {
		add("price", *in.Price)
	}
	if in.PriceTiers != nil {
		tiersJSON, err := json.Marshal(*in.PriceTiers)
		if err != nil {
			return nil, err
		}
		add("price_tiers", tiersJSON)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Quantity != nil {
		add("quantity", *in.Quantity)
	}
	if in.AllowBackorder != nil {
		add("allow_backorder", *in.AllowBackorder)
	}
	if in.MinQuantity != nil {
		add("min_quantity", *in.MinQuantity)
	}
	if in.MaxQuantity != nil {
		add("max_quantity", *in.MaxQuantity)
	}
	if in.Status != nil {
		add("status", *in.Status)
	}

	if len(sets) == 0 {
		return nil, ErrNothingToSet
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return nil, ErrDuplicateProduct
		}
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SetCommerceID(ctx context.Context, id, commerceID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET commerce_id = $2, updated_at = NOW() WHERE id = $1`, id, commerceID)
	return err
}
