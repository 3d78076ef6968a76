package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"

// Client issues single-attempt, time-bounded JSON calls.
type Client struct {
	config     Config
	httpClient *http.Client
	baseURL    *url.URL
	tracer     trace.Tracer
}

// NewClient creates a new client
func NewClient(config Config) (*Client, error) {
	config.SetDefaults()

	var baseURL *url.URL
	if config.BaseURL != "" {
		parsed, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("invalid BaseURL: %q must be absolute", config.BaseURL)
		}
		baseURL = parsed
	}

	// The per-call context carries the deadline; http.Client.Timeout stays
	// unset so every timeout surfaces the same way.
	httpClient := &http.Client{Transport: config.Transport}

	return &Client{
		config:     config,
		httpClient: httpClient,
		baseURL:    baseURL,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// Timeout returns the per-call bound.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// Call performs req and decodes the body into a new T. It returns (nil, nil)
// when the server answered 2xx with an empty body.
func Call[T any](ctx context.Context, c *Client, req Request) (*T, error) {
	var out T
	found, err := c.Do(ctx, req, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// Do performs req exactly once within the configured timeout and decodes a
// successful body into out. It reports false when the body was empty. Every
// failure is an *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) (bool, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, "httpclient."+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	found, status, err := c.do(ctx, method, req, out)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return found, err
}

func (c *Client) do(ctx context.Context, method string, req Request, out any) (bool, int, error) {
	fullURL, err := c.resolve(req.URL, req.Query)
	if err != nil {
		return false, 0, &Error{Kind: FailureRequest, Method: method, URL: req.URL, Err: err}
	}

	fail := func(kind FailureKind, status int, cause error) *Error {
		return &Error{Kind: kind, Method: method, URL: fullURL, StatusCode: status, Err: cause}
	}

	// Prepare request body
	var bodyReader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			return false, 0, fail(FailureRequest, 0, fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return false, 0, fail(FailureRequest, 0, fmt.Errorf("failed to create request: %w", err))
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	c.config.Logger.V(1).Info("Sending request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, 0, fail(classifyTransport(ctx, err), 0, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, resp.StatusCode, fail(classifyTransport(ctx, err), resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	c.config.Logger.V(1).Info("Received response",
		"method", method, "url", fullURL, "status", resp.StatusCode, "bytes", len(bodyBytes), "duration", time.Since(start))

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callErr := fail(FailureStatus, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
		var errResp errorBody
		if json.Unmarshal(bodyBytes, &errResp) == nil {
			callErr.Message = errResp.Message
		}
		return false, resp.StatusCode, callErr
	}

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return false, resp.StatusCode, nil
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return false, resp.StatusCode, fail(FailureDecode, resp.StatusCode, fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return true, resp.StatusCode, nil
}

// resolve builds the absolute URL for raw, merging query into any existing query.
func (c *Client) resolve(raw string, query url.Values) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("request URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}
	if !u.IsAbs() {
		if c.baseURL == nil {
			return "", fmt.Errorf("relative URL %q without BaseURL", raw)
		}
		u = c.baseURL.ResolveReference(u)
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

// classifyTransport separates deadline failures from unreachable servers. A
// cancelled caller context is the only other way to abandon a call, so it is
// reported as a timeout as well.
func classifyTransport(ctx context.Context, err error) FailureKind {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureNetwork
}
