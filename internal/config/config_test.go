package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)

	assert.Equal(t, "./bots", cfg.BotsDir)
	assert.Equal(t, ":7133", cfg.GatewayListenAddr)
	assert.Equal(t, ":9133", cfg.MetricsListenAddr)
	assert.Equal(t, time.Second, cfg.DefaultTurnTimeout)
	assert.Equal(t, 10*time.Second, cfg.RemoteConnectTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestSetDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{BotsDir: "/srv/bots", DefaultTurnTimeout: 5 * time.Second}
	SetDefaults(cfg)

	assert.Equal(t, "/srv/bots", cfg.BotsDir)
	assert.Equal(t, 5*time.Second, cfg.DefaultTurnTimeout)
}

func TestValidateConfig_RejectsMissingRequiredFields(t *testing.T) {
	cfg := &Config{}
	err := ValidateConfig(cfg)
	require.Error(t, err)
}

func TestValidateConfig_AcceptsDefaulted(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	require.NoError(t, ValidateConfig(cfg))
}
