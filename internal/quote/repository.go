package quote

import (
	"context"
	"database/sql"

	"storvbox-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listLimit = 200

type Repository interface {
	CreateRequest(ctx context.Context, q *Request) (*Request, error)
	ListRequests(ctx context.Context) ([]*Request, error)
	CreateMessage(ctx context.Context, m *ContactMessage) (*ContactMessage, error)
	ListMessages(ctx context.Context) ([]*ContactMessage, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const requestColumns = `id, number, name, email, phone, company, service_type, quantity,
	description, timeline, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*Request, error) {
	var q Request
	err := row.Scan(
		&q.ID, &q.Number, &q.Name, &q.Email, &q.Phone, &q.Company, &q.ServiceType, &q.Quantity,
		&q.Description, &q.Timeline, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) CreateRequest(ctx context.Context, q *Request) (*Request, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateRequest"),
	)

	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	created, err := scanRequest(r.db.QueryRowContext(ctx, `
		INSERT INTO quote_requests (id, number, name, email, phone, company, service_type, quantity,
			description, timeline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+requestColumns,
		q.ID, q.Number, q.Name, q.Email, q.Phone, q.Company, q.ServiceType, q.Quantity,
		q.Description, q.Timeline, q.Status,
	))
	if err != nil {
		log.Error("db: failed to insert quote request", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *repository) ListRequests(ctx context.Context) ([]*Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM quote_requests ORDER BY created_at DESC LIMIT $1`, listLimit)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListRequests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	requests := []*Request{}
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, q)
	}
	return requests, rows.Err()
}

func (r *repository) CreateMessage(ctx context.Context, m *ContactMessage) (*ContactMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, m.Status,
	).Scan(&m.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert contact message", zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *repository) ListMessages(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, subject, message, status, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
