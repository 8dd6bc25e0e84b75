package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storvbox-be/internal/logger"

	"go.uber.org/zap"
)

// Repository stores carts as single documents; the last write wins.
type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id string) (*Cart, error) {
	var (
		c         Cart
		itemsJSON []byte
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, items, created_at, updated_at FROM carts WHERE id = $1`, id,
	).Scan(&c.ID, &itemsJSON, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load cart",
			zap.String("layer", "repository"),
			zap.String("cart_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	c.Items = []LineItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
	}
	return &c, nil
}

func (r *repository) Save(ctx context.Context, c *Cart) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Save"),
		zap.String("cart_id", c.ID),
	)

	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, items, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET items = EXCLUDED.items, updated_at = NOW()
		RETURNING created_at, updated_at
	`, c.ID, itemsJSON).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to save cart", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}
