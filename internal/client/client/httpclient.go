package client

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

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/common"
	"github.com/dmitrijs2005/sanes/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

var _ Client = (*HTTPClient)(nil)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	limiter *rate.Limiter
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is used
// as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the backend at baseURL. tokens may be nil,
// in which case no Authorization header is ever sent.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one call. auth=false keeps the Authorization header off
// (login and register).
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// errorBody is the union of the error shapes the backend produces.
type errorBody struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// do performs r and returns the raw response body of a 2xx answer.
func (c *HTTPClient) do(ctx context.Context, r request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.auth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.AuthorizationScheme+" "+token)
		}
	}

	ctx = logging.ContextWithRequestID(ctx, requestID)
	log := c.log.With("method", r.method, "path", r.path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn(ctx, "read response failed", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.dropSession(ctx, log)
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	return raw, nil
}

// dropSession clears the persisted session after a 401. It runs even when the
// request context is already done.
func (c *HTTPClient) dropSession(ctx context.Context, log logging.Logger) {
	if c.tokens == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := c.tokens.Clear(ctx); err != nil {
		log.Error(ctx, "failed to clear session after 401", "error", err)
		return
	}
	log.Info(ctx, "session cleared after 401")
}

func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return apiErr
	}

	switch {
	case eb.Message != "":
		apiErr.Message = eb.Message
	case eb.Detail != "":
		apiErr.Message = eb.Detail
	case eb.Error != "":
		apiErr.Message = eb.Error
	}

	switch {
	case len(eb.Errors) > 0 && string(eb.Errors) != "null":
		apiErr.Errors = eb.Errors
	case eb.Success == nil && apiErr.Message == "" && len(raw) > 0 && raw[0] == '{':
		// plain field-error object, e.g. {"username":["already taken"]}
		apiErr.Errors = json.RawMessage(raw)
	}
	return apiErr
}

// call runs r and decodes a 2xx body into out (when out is not nil).
func (c *HTTPClient) call(ctx context.Context, r request, out any) error {
	raw, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

func decode(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeList accepts both a bare JSON array and a paginated {"results": [...]}
// object.
func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	if trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if page.Results == nil {
			page.Results = []T{}
		}
		return page.Results, nil
	}

	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodePage is decodeList for callers that want the page counters. A bare
// array becomes a single page holding every item.
func decodePage[T any](raw []byte) (*models.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page models.Page[T]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if page.Results == nil {
			page.Results = []T{}
		}
		return &page, nil
	}

	items, err := decodeList[T](trimmed)
	if err != nil {
		return nil, err
	}
	return &models.Page[T]{Count: len(items), Results: items}, nil
}

func getPage[T any](ctx context.Context, c *HTTPClient, path string, query url.Values, failMsg string) (*models.Page[T], error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, auth: true})
	if err != nil {
		return nil, withDefaultMessage(err, failMsg)
	}
	return decodePage[T](raw)
}

func getList[T any](ctx context.Context, c *HTTPClient, path, failMsg string) ([]T, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, withDefaultMessage(err, failMsg)
	}
	return decodeList[T](raw)
}
