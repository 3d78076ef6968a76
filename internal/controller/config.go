package controller

import (
	"errors"
	"fmt"
	"net/url"
)

// DefaultBundlesQueryParam is the query parameter that carries the concern
// on the bundles call.
const DefaultBundlesQueryParam = "q"

var (
	// ErrEmptyPlanURL is returned when the plan endpoint is not configured
	ErrEmptyPlanURL = errors.New("plan URL cannot be empty")
	// ErrEmptyBundlesURL is returned when the bundles endpoint is not configured
	ErrEmptyBundlesURL = errors.New("bundles URL cannot be empty")
	// ErrNilValidator is returned when New is called without a validator
	ErrNilValidator = errors.New("validator cannot be nil")
	// ErrNilClient is returned when New is called without an HTTP client
	ErrNilClient = errors.New("http client cannot be nil")
)

// Config represents configuration for a Controller
type Config struct {
	// PlanURL receives the validated payload as a POST body.
	// Relative URLs resolve against the client's BaseURL.
	PlanURL string

	// BundlesURL is fetched with GET once the plan call succeeded
	BundlesURL string

	// BundlesQueryParam names the query parameter carrying the concern
	BundlesQueryParam string
}

// NewConfig creates a controller configuration with safe defaults
func NewConfig(planURL, bundlesURL string) *Config {
	return &Config{
		PlanURL:           planURL,
		BundlesURL:        bundlesURL,
		BundlesQueryParam: DefaultBundlesQueryParam,
	}
}

// SetDefaults fills in unset optional fields
func (c *Config) SetDefaults() {
	if c.BundlesQueryParam == "" {
		c.BundlesQueryParam = DefaultBundlesQueryParam
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.PlanURL == "" {
		return ErrEmptyPlanURL
	}
	if c.BundlesURL == "" {
		return ErrEmptyBundlesURL
	}
	if _, err := url.Parse(c.PlanURL); err != nil {
		return fmt.Errorf("invalid plan URL: %w", err)
	}
	if _, err := url.Parse(c.BundlesURL); err != nil {
		return fmt.Errorf("invalid bundles URL: %w", err)
	}
	return nil
}

// WithBundlesQueryParam sets the query parameter used for the bundles call
func (c *Config) WithBundlesQueryParam(name string) *Config {
	c.BundlesQueryParam = name
	return c
}
