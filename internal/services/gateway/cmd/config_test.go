package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetenvDuration(t *testing.T) {
	t.Setenv("X_DUR", "8h")
	assert.Equal(t, 8*time.Hour, getenvDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "1500")
	assert.Equal(t, 1500*time.Millisecond, getenvDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Second, getenvDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "")
	assert.Equal(t, time.Second, getenvDuration("X_DUR", time.Second))
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOGIN_LATENCY", "OVERDUE_DEDUP_WINDOW", "MQTT_HOST", "INFLUX_URL"} {
		t.Setenv(k, "")
	}
	cfg, _ := loadConfig()

	assert.Equal(t, "5009", cfg.Port)
	assert.Equal(t, time.Second, cfg.LoginLatency)
	assert.Equal(t, 5*time.Second, cfg.TelemetryInterval)
	assert.Equal(t, 30*time.Second, cfg.IrrigationCheckInterval)
	assert.Equal(t, 3*time.Second, cfg.IrrigationDuration)
	assert.Equal(t, 8*time.Hour, cfg.IrrigationOverdueAfter)
	assert.Equal(t, time.Hour, cfg.OverdueDedupWindow)
	assert.Empty(t, cfg.MQTTHost)
	assert.Empty(t, cfg.InfluxURL)
}

func TestGetenvIntAndBool(t *testing.T) {
	t.Setenv("X_INT", "42")
	t.Setenv("X_BOOL", "true")
	assert.Equal(t, 42, getenvInt("X_INT", 1))
	assert.True(t, getenvBool("X_BOOL", false))

	t.Setenv("X_INT", "many")
	assert.Equal(t, 1, getenvInt("X_INT", 1))
}
