// Package content reads blog content from the headless CMS over its HTTP
// query API. Responses are cached in memory for a few minutes.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"storvbox-be/internal/apperr"
	"storvbox-be/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	defaultAPIVersion = "2024-01-01"
	defaultTimeout    = 10 * time.Second
	defaultCacheTTL   = 5 * time.Minute
	defaultCacheSize  = 256

	listImageWidth    = 800
	listImageHeight   = 450
	detailImageWidth  = 1200
	authorImageWidth  = 96
	authorImageHeight = 96
)

type Options struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// BaseURL overrides the host derived from ProjectID.
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type Client struct {
	projectID  string
	dataset    string
	endpoint   string
	token      string
	httpClient *http.Client
	cache      *expirable.LRU[string, json.RawMessage]
}

func NewClient(opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = defaultAPIVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" && opts.ProjectID != "" {
		host := "api.sanity.io"
		if opts.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", opts.ProjectID, host)
	}

	endpoint := ""
	if base != "" {
		endpoint = fmt.Sprintf("%s/v%s/data/query/%s", base, strings.TrimPrefix(opts.APIVersion, "v"), opts.Dataset)
	}

	return &Client{
		projectID:  opts.ProjectID,
		dataset:    opts.Dataset,
		endpoint:   endpoint,
		token:      opts.Token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		cache:      expirable.NewLRU[string, json.RawMessage](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	raw, err := c.query(ctx, postsQuery, nil)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	posts := []Post{}
	if err := decodeResult(raw, &posts); err != nil {
		return nil, apperr.Upstream(err)
	}
	for i := range posts {
		c.resolveImages(&posts[i], listImageWidth, listImageHeight)
	}
	return posts, nil
}

func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	raw, err := c.query(ctx, postBySlugQuery, map[string]string{"slug": slug})
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if isNull(raw) {
		return nil, ErrPostNotFound
	}

	var post Post
	if err := decodeResult(raw, &post); err != nil {
		return nil, apperr.Upstream(err)
	}
	c.resolveImages(&post, detailImageWidth, 0)
	return &post, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	raw, err := c.query(ctx, categoriesQuery, nil)
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	categories := []Category{}
	if err := decodeResult(raw, &categories); err != nil {
		return nil, apperr.Upstream(err)
	}
	return categories, nil
}

func (c *Client) resolveImages(p *Post, width, height int) {
	if p.Categories == nil {
		p.Categories = []Category{}
	}
	if p.MainImage != nil {
		p.MainImage.URL = c.imageURL(p.MainImage.Asset.Ref, width, height)
	}
	if p.Author != nil && p.Author.Image != nil {
		p.Author.Image.URL = c.imageURL(p.Author.Image.Asset.Ref, authorImageWidth, authorImageHeight)
	}
}

func (c *Client) imageURL(ref string, width, height int) string {
	u, err := ImageURL(c.projectID, c.dataset, ref, width, height)
	if err != nil {
		logger.L().Debug("skipping image", zap.Error(err))
		return ""
	}
	return u
}

// query runs a GROQ query. Params are JSON encoded as the API expects.
func (c *Client) query(ctx context.Context, groq string, params map[string]string) (json.RawMessage, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "content"))

	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", groq)
	for k, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		q.Set("$"+k, string(encoded))
	}

	key := cacheKey(groq, params)
	if raw, ok := c.cache.Get(key); ok {
		log.Debug("cms cache hit")
		return raw, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("cms request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("cms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("cms returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedRes, resp.StatusCode)
	}

	var res queryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedRes, err)
	}

	c.cache.Add(key, res.Result)
	log.Debug("cms query completed", zap.Duration("duration", time.Since(start)), zap.Int("cms_ms", res.Ms))
	return res.Result, nil
}

func cacheKey(groq string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(groq)
	for _, k := range keys {
		b.WriteString("|" + k + "=" + params[k])
	}
	return b.String()
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeResult(raw json.RawMessage, out any) error {
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedRes, err)
	}
	return nil
}
