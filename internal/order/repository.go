package order

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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	Count(ctx context.Context, status *Status) (int, error)
	UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Order, error)
	Annul(ctx context.Context, id, reason, actor string) (*Order, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, order_number, user_id, user_email, user_name, items, total, shipping_address,
	delivery_method, notes, admin_notes, payment_method, status, has_backorder, updated_by,
	annulled_at, annulled_by, annulment_reason, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var (
		o            Order
		itemsJSON    []byte
		shippingJSON []byte
	)

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.UserEmail, &o.UserName, &itemsJSON, &o.Total, &shippingJSON,
		&o.DeliveryMethod, &o.Notes, &o.AdminNotes, &o.PaymentMethod, &o.Status, &o.HasBackorder, &o.UpdatedBy,
		&o.AnnulledAt, &o.AnnulledBy, &o.AnnulmentReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Items = []Item{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
	}
	if len(shippingJSON) > 0 {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}

	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*Order, error) {
	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Create(ctx context.Context, o *Order) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_number", o.OrderNumber),
	)

	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, user_id, user_email, user_name, items, total,
			shipping_address, delivery_method, notes, payment_method, status, has_backorder)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+orderColumns,
		o.ID, o.OrderNumber, o.UserID, o.UserEmail, o.UserName, itemsJSON, o.Total,
		shippingJSON, o.DeliveryMethod, o.Notes, o.PaymentMethod, o.Status, o.HasBackorder,
	)

	created, err := scanOrder(row)
	if err != nil {
		log.Error("db: failed to insert order", zap.Error(err))
		return nil, err
	}

	log.Info("order created", zap.String("order_id", created.ID))
	return created, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListByUser", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	// ---------- BASE QUERY ----------
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}

	// ---------- FILTER ----------
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	// ---------- ORDER + PAGINATION ----------
	args = append(args, f.Limit, f.Skip)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	log.Debug("Executing List query", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed List", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *repository) Count(ctx context.Context, status *Status) (int, error) {
	query := `SELECT COUNT(*) FROM orders`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus is a staff override: no transition rule is enforced here.
func (r *repository) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Order, error) {
	sets := []string{}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.AdminNotes != nil {
		add("admin_notes", *u.AdminNotes)
	}
	if len(sets) == 0 {
		return nil, ErrNothingToSet
	}
	if u.UpdatedBy != "" {
		add("updated_by", u.UpdatedBy)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *repository) Annul(ctx context.Context, id, reason, actor string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, annulled_at = NOW(), annulled_by = $3, annulment_reason = $4,
			updated_by = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, StatusAnnulled, actor, reason,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[Status]int{}
	for rows.Next() {
		var (
			st Status
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (r *repository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = ANY($1)`,
		pq.Array(RevenueStatuses()),
	).Scan(&sum)
	return sum, err
}
