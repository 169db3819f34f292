package dummyjson

import (
	"bytes"
	"context"
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
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketplace/internal/catalog/types"
	"marketplace/internal/config"
)

const (
	// DefaultBaseURL is the public DummyJSON API.
	DefaultBaseURL = "https://dummyjson.com"

	maxBodyBytes = 16 << 20
)

var tracer = otel.Tracer("marketplace/internal/dummyjson")

// Client reads products from the DummyJSON products API.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

// NewClient builds a client with bounded retries for transport errors and 5xx responses.
// httpClient may be nil.
func NewClient(cfg config.CatalogConfig, httpClient *http.Client) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = slog.Default()
	// hand back the last response instead of a generic "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc,
	}, nil
}

// FetchAllProducts returns the whole catalog in one page (limit=0).
// docs https://dummyjson.com/docs/products
func (c *Client) FetchAllProducts(ctx context.Context) (*types.ProductsResponse, error) {
	ctx, span := tracer.Start(ctx, "dummyjson.FetchAllProducts")
	defer span.End()

	params := url.Values{}
	params.Set("limit", "0")
	body, err := c.get(ctx, "products", "/products", params)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	resp, err := ParseProductsResponse(body)
	if err != nil {
		err = &ParseError{Operation: "products", Err: err}
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("products.count", len(resp.Products)), attribute.Int("products.total", resp.Total))
	return resp, nil
}

// FetchProductByID returns ErrNotFound for ids the API does not know, including
// non-positive ids which are never sent.
func (c *Client) FetchProductByID(ctx context.Context, id int) (*types.Product, error) {
	ctx, span := tracer.Start(ctx, "dummyjson.FetchProductByID", trace.WithAttributes(attribute.Int("product.id", id)))
	defer span.End()

	if id <= 0 {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	body, err := c.get(ctx, "product", "/products/"+strconv.Itoa(id), nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		recordError(span, err)
		return nil, err
	}
	p, err := ParseProduct(body)
	if err != nil {
		err = &ParseError{Operation: "product", Err: err}
		recordError(span, err)
		return nil, err
	}
	if p.ID == 0 {
		// some proxies answer unknown ids with an empty object
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// Ready checks the API answers at all.
func (c *Client) Ready(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	params.Set("select", "id")
	_, err := c.get(ctx, "ready", "/products", params)
	return err
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse %s URL: %w", operation, err)
	}
	if params != nil {
		reqURL.RawQuery = params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var buf bytes.Buffer
	// ensure body is fully read for connection reuse
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	slog.DebugContext(ctx, "dummyjson response", "operation", operation, "url", reqURL.String(), "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body := strings.TrimSpace(buf.String())
		if resp.StatusCode != http.StatusNotFound {
			slog.ErrorContext(ctx, "received products API error", "operation", operation, "status", resp.StatusCode, "body", body)
		}
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}
	return buf.Bytes(), nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
}
