package quote

import (
	"context"
	"fmt"
	"strings"

	"storvbox-be/internal/analytics"
	"storvbox-be/internal/background"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/notify"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

// Submitter is satisfied by *background.Queue.
type Submitter interface {
	Submit(ctx context.Context, name string, task background.Task) bool
}

type Service interface {
	SubmitRequest(ctx context.Context, in RequestInput) (*Request, error)
	ListRequests(ctx context.Context) ([]*Request, error)
	SubmitContact(ctx context.Context, in ContactInput) (*ContactMessage, error)
	ListMessages(ctx context.Context) ([]*ContactMessage, error)
}

type Options struct {
	Mailer     notify.Mailer
	Queue      Submitter
	Tracker    analytics.Tracker
	StaffEmail string
}

type service struct {
	repo Repository
	opts Options
}

func NewService(repo Repository, opts Options) Service {
	if opts.Tracker == nil {
		opts.Tracker = analytics.Nop{}
	}
	if opts.Mailer == nil {
		opts.Mailer = notify.LogMailer{}
	}
	return &service{repo: repo, opts: opts}
}

func validateRequest(in RequestInput) error {
	var v utils.Validator
	v.Length(in.Name, 2, 100, "name", "Името е задължително")
	v.Check(utils.IsEmail(in.Email), "email", "Невалиден имейл адрес")
	v.Check(utils.IsPhone(in.Phone), "phone", "Невалиден телефонен номер")
	v.Required(in.ServiceType, "serviceType", "Изберете услуга")
	v.Check(in.Quantity > 0, "quantity", "Въведете количество")
	v.Length(in.Description, 10, 2000, "description", "Описанието трябва да е между 10 и 2000 символа")
	v.Length(in.Company, 0, 200, "company", "Името на фирмата е твърде дълго")
	return v.Err()
}

func (s *service) SubmitRequest(ctx context.Context, in RequestInput) (*Request, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SubmitRequest"),
	)

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRequest(in); err != nil {
		return nil, err
	}

	q, err := s.repo.CreateRequest(ctx, &Request{
		Number:      utils.GenerateQuoteNumber(),
		Name:        utils.Sanitize(in.Name),
		Email:       in.Email,
		Phone:       utils.NormalizePhone(in.Phone),
		Company:     utils.Sanitize(in.Company),
		ServiceType: utils.Sanitize(in.ServiceType),
		Quantity:    in.Quantity,
		Description: utils.Sanitize(in.Description),
		Timeline:    utils.Sanitize(in.Timeline),
		Status:      StatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.notifyStaff(ctx, "quote.email", notify.Message{
		Subject: "Нова заявка за оферта " + q.Number,
		Text: fmt.Sprintf("%s <%s>, %s\nУслуга: %s\nКоличество: %d\nСрок: %s\n\n%s\n",
			q.Name, q.Email, q.Phone, q.ServiceType, q.Quantity, q.Timeline, q.Description),
	})
	s.opts.Tracker.Track(ctx, analytics.EventQuoteRequested, analytics.Properties{
		"requestId":   q.ID,
		"serviceType": q.ServiceType,
		"quantity":    q.Quantity,
	})

	log.Info("quote request stored", zap.String("request_id", q.ID))
	return q, nil
}

func (s *service) ListRequests(ctx context.Context) ([]*Request, error) {
	return s.repo.ListRequests(ctx)
}

func (s *service) SubmitContact(ctx context.Context, in ContactInput) (*ContactMessage, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var v utils.Validator
	v.Length(in.Name, 2, 100, "name", "Името е задължително")
	v.Check(utils.IsEmail(in.Email), "email", "Невалиден имейл адрес")
	v.Length(in.Message, 1, 5000, "message", "Съобщението е задължително")
	if in.Phone != "" {
		v.Check(utils.IsPhone(in.Phone), "phone", "Невалиден телефонен номер")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	subject := utils.Sanitize(in.Subject)
	if subject == "" {
		subject = defaultSubject
	}

	m, err := s.repo.CreateMessage(ctx, &ContactMessage{
		Name:    utils.Sanitize(in.Name),
		Email:   in.Email,
		Phone:   utils.NormalizePhone(in.Phone),
		Subject: subject,
		Message: utils.Sanitize(in.Message),
		Status:  MessageUnread,
	})
	if err != nil {
		return nil, err
	}

	s.notifyStaff(ctx, "contact.email", notify.Message{
		Subject: "Запитване: " + m.Subject,
		Text:    fmt.Sprintf("%s <%s> %s\n\n%s\n", m.Name, m.Email, m.Phone, m.Message),
	})

	logger.FromCtx(ctx).Info("contact message stored", zap.String("message_id", m.ID))
	return m, nil
}

func (s *service) ListMessages(ctx context.Context) ([]*ContactMessage, error) {
	return s.repo.ListMessages(ctx)
}

func (s *service) notifyStaff(ctx context.Context, task string, msg notify.Message) {
	if s.opts.Queue == nil || s.opts.StaffEmail == "" {
		return
	}
	msg.To = s.opts.StaffEmail
	s.opts.Queue.Submit(ctx, task, func(ctx context.Context) error {
		return s.opts.Mailer.Send(ctx, msg)
	})
}
