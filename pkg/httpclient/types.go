package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
)

// DefaultTimeout bounds a single call when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config holds client configuration
type Config struct {
	// BaseURL resolves relative request URLs (optional, e.g. "http://localhost:8080")
	BaseURL string

	// Timeout is the hard wall-clock bound for a single call
	Timeout time.Duration

	// UserAgent is sent on every request when set
	UserAgent string

	// Transport overrides the HTTP transport (tests, proxies)
	Transport http.RoundTripper

	// Logger receives per-call debug output
	Logger logr.Logger
}

// SetDefaults sets reasonable default values for the config
func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = "planflow-go"
	}
	if c.Logger.GetSink() == nil {
		c.Logger = logr.Discard()
	}
}

// Request describes one call.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   any
	Header http.Header
}

// FailureKind classifies why a call failed.
type FailureKind int

const (
	// FailureRequest means the request could not be built.
	FailureRequest FailureKind = iota
	// FailureNetwork means the transport could not reach the server.
	FailureNetwork
	// FailureTimeout means no response arrived within the timeout.
	FailureTimeout
	// FailureStatus means the server answered outside 2xx.
	FailureStatus
	// FailureDecode means a non-empty success body was not valid JSON for the target.
	FailureDecode
)

var failureNames = map[FailureKind]string{
	FailureRequest: "request",
	FailureNetwork: "network",
	FailureTimeout: "timeout",
	FailureStatus:  "status",
	FailureDecode:  "decode",
}

func (k FailureKind) String() string {
	if name, ok := failureNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is the typed failure returned by every call.
type Error struct {
	Kind       FailureKind
	Method     string
	URL        string
	StatusCode int
	// Message is the server-supplied "message" field, if any.
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := fmt.Sprintf("%s %s", e.Method, e.URL)
	switch e.Kind {
	case FailureStatus:
		if e.Message != "" {
			return fmt.Sprintf("%s: API error (%d): %s", prefix, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: API error (%d)", prefix, e.StatusCode)
	case FailureTimeout:
		return fmt.Sprintf("%s: request timed out: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %s failure: %v", prefix, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var callErr *Error
	return errors.As(err, &callErr) && callErr.Kind == kind
}

// errorBody is the subset of an error response body we surface.
type errorBody struct {
	Message string `json:"message"`
}
