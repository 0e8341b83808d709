package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrGateway marks every failed round-trip: transport errors, non-2xx
// responses, and undecodable bodies alike. Callers do not distinguish status
// codes.
var ErrGateway = errors.New("product gateway failure")

// Gateway defines the remote product operations. It is implemented by *Client
// and can be faked in tests.
type Gateway interface {
	FetchProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to the product catalog REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	log       *slog.Logger
}

const (
	DefaultBaseURL   = "https://fakestoreapi.com"
	defaultUserAgent = "shelf/0.1"
	defaultTimeout   = 10 * time.Second
	defaultRPS       = 5
)

// Options tune a Client. Zero values use defaults.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// NewClient builds a Client for the catalog rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := max(int(rps), 1)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		log:       logger,
	}, nil
}

// FetchProducts retrieves the full catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateProduct submits a new product and returns the echoed representation.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if c == nil {
		return Product{}, fmt.Errorf("client is nil")
	}
	var payload Product
	if err := c.do(ctx, http.MethodPost, "/products", in, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// UpdateProduct replaces the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if c == nil {
		return Product{}, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return Product{}, fmt.Errorf("product id required")
	}
	var payload Product
	if err := c.do(ctx, http.MethodPut, productPath(id), in, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// DeleteProduct removes the product with the given id. The response body is
// ignored.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return fmt.Errorf("product id required")
	}
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", ErrGateway, err)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With(
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
	)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("gateway request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: execute request: %w", ErrGateway, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("gateway response",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: api %s %s returned status %d", ErrGateway, method, path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrGateway, err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
