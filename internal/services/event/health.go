package event

import (
	"encoding/json"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// Dependencies are the optional outward links checked by /healthz and /readyz.
// A nil client means the feature is disabled, not down.
type Dependencies struct {
	MQTT   mqtt.Client
	Influx influxdb2.Client
	Writer *Writer
	// MinErrorAge is how long ago the last Influx write error must be.
	MinErrorAge time.Duration
}

type Status struct {
	Status          string   `json:"status"`
	MQTTEnabled     bool     `json:"mqtt_enabled"`
	MQTTConnected   bool     `json:"mqtt_connected"`
	InfluxEnabled   bool     `json:"influx_enabled"`
	InfluxOK        bool     `json:"influx_ok"`
	LastWriteErrorS *float64 `json:"last_write_error_age_sec,omitempty"`
}

// Check evaluates every enabled dependency.
func (d Dependencies) Check() Status {
	st := Status{
		MQTTEnabled:   d.MQTT != nil,
		InfluxEnabled: d.Influx != nil,
	}
	healthy := true
	if st.MQTTEnabled {
		st.MQTTConnected = d.MQTT.IsConnectionOpen()
		healthy = healthy && st.MQTTConnected
	}
	if st.InfluxEnabled {
		age := d.Writer.LastErrorAge()
		secs := age.Seconds()
		st.LastWriteErrorS = &secs
		st.InfluxOK = age > d.MinErrorAge
		healthy = healthy && st.InfluxOK
	}
	switch {
	case healthy:
		st.Status = "ok"
	case st.MQTTConnected || st.InfluxOK:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	return st
}

// Ready reports whether every enabled dependency is ok.
func (d Dependencies) Ready() bool {
	return d.Check().Status == "ok"
}

// NewHealthHandler answers 200 with the dependency report; the process is alive.
func NewHealthHandler(d Dependencies) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d.Check())
	})
}

// NewReadyHandler answers 200 only if every enabled dependency is ok.
func NewReadyHandler(d Dependencies) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ready := d.Ready()
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		type resp struct {
			Ready bool `json:"ready"`
		}
		_ = json.NewEncoder(w).Encode(resp{Ready: ready})
	})
}
