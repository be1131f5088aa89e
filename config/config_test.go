package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()

	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.FailsafeTimeoutSeconds)
	assert.Equal(t, 3, cfg.MinGpsFix)
	assert.Equal(t, 1, cfg.TickIntervalSeconds)
	assert.Equal(t, "rover", cfg.MQTTTopicPrefix)
}

func TestLoadConfigClampsNonPositiveWindows(t *testing.T) {
	t.Setenv("FAILSAFE_TIMEOUT_SECONDS", "-3")
	t.Setenv("TICK_INTERVAL_SECONDS", "0")
	t.Setenv("MIN_GPS_FIX", "-1")

	cfg, err := LoadConfig()

	assert.NoError(t, err)
	assert.Equal(t, 1, cfg.FailsafeTimeoutSeconds)
	assert.Equal(t, 1, cfg.TickIntervalSeconds)
	assert.Equal(t, 0, cfg.MinGpsFix)
}

func TestLoadConfigInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("FAILSAFE_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := LoadConfig()

	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.FailsafeTimeoutSeconds)
}
