// Package notify delivers transactional email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"storvbox-be/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const senderName = "STORVBOX"

var ErrMissingRecipient = errors.New("notify: recipient is empty")

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Mailer is what services depend on.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sender is satisfied by *sendgrid.Client.
type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client sender
	from   string
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notify"),
		zap.String("subject", msg.Subject),
	)

	if strings.TrimSpace(msg.To) == "" {
		return ErrMissingRecipient
	}

	email := mail.NewSingleEmail(
		mail.NewEmail(senderName, m.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		"<pre>"+html.EscapeString(msg.Text)+"</pre>",
	)

	res, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		log.Error("sendgrid send error", zap.Error(err))
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if res.StatusCode >= 400 {
		log.Error("sendgrid rejected message",
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body),
		)
		return fmt.Errorf("sendgrid send failed: status=%d", res.StatusCode)
	}

	log.Info("mail sent", zap.Int("status", res.StatusCode))
	return nil
}

// LogMailer only logs. Used when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrMissingRecipient
	}
	logger.FromCtx(ctx).Info("mail delivery disabled, message dropped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// New picks SendGrid when a key is present.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewSendGridMailer(apiKey, from)
}
