package site

import (
	"errors"
	"time"
)

var (
	// ErrEmptyRoot is returned when no asset directory is configured
	ErrEmptyRoot = errors.New("asset root cannot be empty")
	// ErrMissingCredentials is returned when the Basic auth user or password is unset
	ErrMissingCredentials = errors.New("site user and password must both be set")
)

// DefaultSessionTTL is how long a session cookie stays valid.
const DefaultSessionTTL = 12 * time.Hour

// Config holds server configuration
type Config struct {
	Addr          string        `env:"PLANFLOW_SITE_ADDR" envDefault:":8080"`
	Root          string        `env:"PLANFLOW_SITE_ROOT" envDefault:"./public"`
	User          string        `env:"PLANFLOW_SITE_USER"`
	Password      string        `env:"PLANFLOW_SITE_PASSWORD"`
	SessionSecret string        `env:"PLANFLOW_SITE_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"PLANFLOW_SITE_SESSION_TTL" envDefault:"12h"`
}

// SetDefaults fills in unset optional fields
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrEmptyRoot
	}
	if c.User == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
