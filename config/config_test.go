package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.AWSRegion)
	assert.False(t, cfg.ReadOnly)
	assert.Equal(t, 30*time.Second, cfg.FHIRTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("HEALTHLAKE_MCP_READONLY", "true")
	t.Setenv("FHIR_HTTP_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, 5*time.Second, cfg.FHIRTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("FHIR_HTTP_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FHIR_HTTP_TIMEOUT")
}
