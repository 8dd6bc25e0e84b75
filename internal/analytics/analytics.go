// Package analytics emits server-side events. Delivery is best effort: events
// go through the background queue and failures are only logged and counted.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storvbox-be/internal/background"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/metrics"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

const (
	EventSignup         = "user_signup"
	EventLogin          = "user_login"
	EventAddToCart      = "add_to_cart"
	EventPurchase       = "purchase"
	EventOrderAnnulled  = "order_annulled"
	EventQuoteRequested = "quote_requested"
)

type Properties map[string]any

// Tracker is what services depend on.
type Tracker interface {
	Track(ctx context.Context, name string, props Properties)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(context.Context, string, Properties) {}

// Submitter is satisfied by *background.Queue.
type Submitter interface {
	Submit(ctx context.Context, name string, task background.Task) bool
}

type Event struct {
	Name       string     `json:"event"`
	UserID     string     `json:"userId,omitempty"`
	CartID     string     `json:"cartId,omitempty"`
	RequestID  string     `json:"requestId,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

type Options struct {
	URL      string
	Token    string
	Timeout  time.Duration
	Registry *metrics.Registry
}

type Client struct {
	url        string
	token      string
	httpClient *http.Client
	queue      Submitter
	now        func() time.Time

	tracked *metrics.Counter
	sent    *metrics.Counter
}

func NewClient(opts Options, queue Submitter) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Registry == nil {
		opts.Registry = metrics.Default
	}

	return &Client{
		url:        opts.URL,
		token:      opts.Token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		queue:      queue,
		now:        time.Now,
		tracked:    opts.Registry.Counter("analytics.tracked"),
		sent:       opts.Registry.Counter("analytics.sent"),
	}
}

// Track never blocks the caller. Without a collector URL the event is only logged.
func (c *Client) Track(ctx context.Context, name string, props Properties) {
	c.tracked.Inc()

	e := Event{
		Name:       name,
		RequestID:  logger.RequestIDFrom(ctx),
		Properties: props,
		Timestamp:  c.now().UTC(),
	}
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		e.UserID = id
	}
	e.CartID = utils.CartIDFromContext(ctx)

	if c.url == "" {
		logger.FromCtx(ctx).Debug("analytics event", zap.String("event", name), zap.Any("properties", props))
		return
	}

	c.queue.Submit(ctx, "analytics."+name, func(taskCtx context.Context) error {
		return c.send(taskCtx, e)
	})
}

func (c *Client) send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics collector returned %d", resp.StatusCode)
	}

	c.sent.Inc()
	return nil
}
