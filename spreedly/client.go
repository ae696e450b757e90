// Package spreedly is a client for the Spreedly core API. Request bodies are
// built from flat field mappings and responses come back as decoded wire
// values with camelized keys, unwrapped from their root element.
package spreedly

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alovak/cardflow-gateway/wire"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const DefaultEndpoint = "https://core.spreedly.com/v1/"

type Client struct {
	endpoint string
	key      string
	secret   string
	http     *http.Client
	timeout  time.Duration
	codec    wire.Codec
	logger   *slog.Logger
}

type Option func(*Client)

// WithEndpoint points the client at another API root, e.g. a test server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/") + "/"
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every call, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithCodec(codec wire.Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// New returns a client for one environment.
func New(environmentKey, accessSecret string, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		key:      environmentKey,
		secret:   accessSecret,
		http:     &http.Client{Timeout: 30 * time.Second},
		codec:    wire.XML(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	c.logger = c.logger.With(slog.String("component", "spreedly"))
	return c
}

// request describes one API call. A nil fields slice sends no body.
type request struct {
	method string
	path   string
	root   string
	fields []map[string]any
}

// do runs the request and unwraps the root of the decoded response. Error
// statuses come back as *APIError.
func (c *Client) do(ctx context.Context, req request) (any, error) {
	var body io.Reader
	if req.fields != nil {
		b, err := c.codec.Encode(req.root, req.fields...)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", req.root, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint+strings.TrimLeft(req.path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.SetBasicAuth(c.key, c.secret)
	httpReq.Header.Set("Accept", c.codec.ContentType())
	if body != nil {
		httpReq.Header.Set("Content-Type", c.codec.ContentType())
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("api call",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.apiError(resp.StatusCode, raw)
	}

	v, err := c.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	out, err := wire.ExtractRoot()(v)
	if err != nil {
		return nil, fmt.Errorf("unwrapping response: %w", err)
	}
	return out, nil
}

func (c *Client) apiError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var v any
	if len(bytes.TrimSpace(raw)) == 0 {
		rec := wire.NewRecord()
		rec.Set("error", emptyErrorMessage)
		v = rec
	} else {
		decoded, err := c.codec.Decode(raw)
		if err != nil {
			apiErr.Payload = strings.TrimSpace(string(raw))
			apiErr.Err = err
			return apiErr
		}
		v = decoded
	}

	payload, err := wire.ExtractRoot()(v)
	if err != nil {
		apiErr.Payload = v
		apiErr.Err = err
		return apiErr
	}
	apiErr.Payload = payload
	return apiErr
}

func asRecord(v any) (*wire.Record, error) {
	rec, ok := v.(*wire.Record)
	if !ok {
		return nil, fmt.Errorf("%w: expected an element, got %T", wire.ErrMalformedWire, v)
	}
	return rec, nil
}

// asList accepts a sequence or a single element.
func asList(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case *wire.Record:
		return []any{t}, nil
	case nil:
		return []any{}, nil
	case string:
		if t == "" {
			return []any{}, nil
		}
	}
	return nil, fmt.Errorf("%w: expected a list, got %T", wire.ErrMalformedWire, v)
}

func (c *Client) record(ctx context.Context, req request) (*wire.Record, error) {
	v, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

func (c *Client) list(ctx context.Context, req request) ([]any, error) {
	v, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return asList(v)
}
