// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
)

const namespace = "greenpower"

// Metrics implements dashboard.Observer and session.Observer.
type Metrics struct {
	reg *prometheus.Registry

	temperature    prometheus.Gauge
	humidity       prometheus.Gauge
	telemetryTicks prometheus.Counter
	notifications  *prometheus.CounterVec
	loginAttempts  *prometheus.CounterVec
	activeSessions prometheus.Gauge
	wsClients      prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "temperature_celsius",
			Help: "Last simulated greenhouse temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "humidity_percent",
			Help: "Last simulated greenhouse relative humidity.",
		}),
		telemetryTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "telemetry_ticks_total",
			Help: "Telemetry simulator ticks across all dashboards.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_total",
			Help: "Notifications appended to dashboard logs.",
		}, []string{"kind", "level"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "login_attempts_total",
			Help: "Resolved login attempts by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_sessions",
			Help: "Logged in sessions with a mounted dashboard.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "websocket_clients",
			Help: "Open live dashboard feeds.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.temperature, m.humidity, m.telemetryTicks, m.notifications,
		m.loginAttempts, m.activeSessions, m.wsClients, m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the registry every collector is registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ===================== dashboard.Observer =====================

func (m *Metrics) TelemetryUpdated(e model.TelemetryEvent) {
	m.temperature.Set(e.Temperature)
	m.humidity.Set(e.Humidity)
	m.telemetryTicks.Inc()
}

func (m *Metrics) NotificationAdded(e model.NotificationEvent) {
	m.notifications.WithLabelValues(e.Kind, e.Level).Inc()
}

func (m *Metrics) ActuatorsChanged(model.ActuatorEvent) {}

// ===================== session.Observer =====================

func (m *Metrics) LoginAttempted(_ string, err error) {
	result := "success"
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		result = "invalid"
	case err != nil:
		result = "error"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionOpened(string) { m.activeSessions.Inc() }
func (m *Metrics) SessionClosed(string) { m.activeSessions.Dec() }

// ===================== HTTP =====================

// WebsocketOpened and WebsocketClosed track live feeds.
func (m *Metrics) WebsocketOpened() { m.wsClients.Inc() }
func (m *Metrics) WebsocketClosed() { m.wsClients.Dec() }

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Middleware records count and latency per mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if route == "/ws" {
			// hijacked, no status to record
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
	})
}
