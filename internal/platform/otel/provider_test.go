package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	t.Run("no_endpoint", func(t *testing.T) {
		t.Setenv("PLANFLOW_OTEL_ENDPOINT", "")
		shutdown, err := Setup(context.Background(), "planflow-test")
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("explicitly_disabled", func(t *testing.T) {
		t.Setenv("PLANFLOW_OTEL_ENDPOINT", "http://localhost:4318")
		t.Setenv("PLANFLOW_OTEL_ENABLED", "false")
		shutdown, err := Setup(context.Background(), "planflow-test")
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})
}
