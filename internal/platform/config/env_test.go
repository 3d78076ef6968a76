package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envTestConfig struct {
	Port    int           `env:"PLANFLOW_TEST_PORT" envDefault:"123"`
	Timeout time.Duration `env:"PLANFLOW_TEST_TIMEOUT" envDefault:"30s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("PLANFLOW_TEST_TIMEOUT", "5s")

	var cfg envTestConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("PLANFLOW_TEST_PORT", "not-an-int")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
