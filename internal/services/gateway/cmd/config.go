package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	LogLevel      string
	LogFormat     string
	SessionSecret string
	CookieSecure  bool
	SessionIdle   time.Duration

	LoginLatency            time.Duration
	TelemetryInterval       time.Duration
	IrrigationCheckInterval time.Duration
	IrrigationDuration      time.Duration
	IrrigationOverdueAfter  time.Duration
	OverdueDedupWindow      time.Duration

	// MQTT mirror (opzionale: disattivato se MQTTHost è vuoto)
	MQTTHost        string
	MQTTPort        int
	MQTTUser        string
	MQTTPassword    string
	MQTTClientID    string
	MQTTTopicPrefix string

	// Storico su InfluxDB (opzionale: disattivato se InfluxURL è vuoto)
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// gRPC health (opzionale: disattivato se vuoto)
	GRPCHealthPort string

	BreakerFailures int
	BreakerOpenFor  time.Duration
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}
func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
func getenvBool(k string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// getenvDuration accepts Go durations ("5s", "8h") or plain milliseconds.
func getenvDuration(k string, d time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return d
}

// loadConfig reads the environment, after a .env file if one is present.
func loadConfig() (Config, bool) {
	dotenv := godotenv.Load() == nil
	return Config{
		Port:          getenv("PORT", "5009"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		SessionSecret: getenv("SESSION_SECRET", ""),
		CookieSecure:  getenvBool("COOKIE_SECURE", false),
		SessionIdle:   getenvDuration("SESSION_IDLE", 24*time.Hour),

		LoginLatency:            getenvDuration("LOGIN_LATENCY", time.Second),
		TelemetryInterval:       getenvDuration("TELEMETRY_INTERVAL", 5*time.Second),
		IrrigationCheckInterval: getenvDuration("IRRIGATION_CHECK_INTERVAL", 30*time.Second),
		IrrigationDuration:      getenvDuration("IRRIGATION_DURATION", 3*time.Second),
		IrrigationOverdueAfter:  getenvDuration("IRRIGATION_OVERDUE_AFTER", 8*time.Hour),
		OverdueDedupWindow:      getenvDuration("OVERDUE_DEDUP_WINDOW", time.Hour),

		MQTTHost:        getenv("MQTT_HOST", ""),
		MQTTPort:        getenvInt("MQTT_PORT", 1883),
		MQTTUser:        getenv("MQTT_USER", ""),
		MQTTPassword:    getenv("MQTT_PASSWORD", ""),
		MQTTClientID:    getenv("MQTT_CLIENT_ID", getenv("HOSTNAME", "greenpower-gateway")),
		MQTTTopicPrefix: getenv("MQTT_TOPIC_PREFIX", "greenhouse"),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "greenpower"),
		InfluxBucket: getenv("INFLUX_BUCKET", "greenhouse"),

		GRPCHealthPort: getenv("GRPC_HEALTH_PORT", ""),

		BreakerFailures: getenvInt("BREAKER_FAILURES", 5),
		BreakerOpenFor:  getenvDuration("BREAKER_OPEN_FOR", 30*time.Second),
	}, dotenv
}
