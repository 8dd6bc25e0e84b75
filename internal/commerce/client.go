package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storvbox-be/internal/logger"

	"go.uber.org/zap"
)

const (
	publishableKeyHeader = "x-publishable-api-key"
	defaultTimeout       = 10 * time.Second
)

type Options struct {
	BaseURL        string
	PublishableKey string
	AdminToken     string
	Currency       string
	Timeout        time.Duration
}

// Client talks to the external commerce engine. Storefront reads use the
// publishable key; catalog management uses the admin bearer token.
type Client struct {
	baseURL        string
	publishableKey string
	adminToken     string
	currency       string
	httpClient     *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.PublishableKey == "" {
		logger.L().Warn("commerce publishable key is empty")
	}

	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		publishableKey: opts.PublishableKey,
		adminToken:     opts.AdminToken,
		currency:       strings.ToLower(opts.Currency),
		httpClient: &http.Client{
			// No retries: every call is attempted once.
			Timeout: opts.Timeout,
		},
	}
}

func (c *Client) Currency() string { return c.currency }

// ----------------- Store API -----------------

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var res productListResponse
	if err := c.do(ctx, http.MethodGet, "/store/products", nil, false, &res); err != nil {
		return nil, err
	}
	if res.Products == nil {
		res.Products = []Product{}
	}
	return res.Products, nil
}

// GetProductByHandle matches on handle or on any variant SKU.
func (c *Client) GetProductByHandle(ctx context.Context, key string) (*Product, error) {
	q := url.Values{}
	q.Set("handle", key)

	var res productListResponse
	if err := c.do(ctx, http.MethodGet, "/store/products?"+q.Encode(), nil, false, &res); err != nil {
		return nil, err
	}
	for i := range res.Products {
		if res.Products[i].Handle == key {
			return &res.Products[i], nil
		}
	}

	all, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		for _, v := range all[i].Variants {
			if v.SKU != "" && v.SKU == key {
				return &all[i], nil
			}
		}
	}
	return nil, ErrNotFound
}

// ----------------- Admin API -----------------

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if c.adminToken == "" {
		return nil, ErrNoAdminToken
	}

	var res productResponse
	if err := c.do(ctx, http.MethodPost, "/admin/products", in, true, &res); err != nil {
		return nil, err
	}
	return &res.Product, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, admin bool, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "commerce"),
		zap.String("http_method", method),
		zap.String("path", path),
	)

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to marshal commerce request", zap.Error(err))
			return err
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	} else if c.publishableKey != "" {
		req.Header.Set(publishableKeyHeader, c.publishableKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("commerce request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return fmt.Errorf("commerce request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return fmt.Errorf("failed to read commerce response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("commerce returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("%w: status %d", ErrUnexpectedRes, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("failed decoding commerce response", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnexpectedRes, err)
	}

	log.Debug("commerce request completed", zap.Duration("duration", time.Since(start)))
	return nil
}
