package app

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/greenpower/internal/services/event"
	"github.com/LeonardoBeccarini/greenpower/internal/services/gateway/metrics"
	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
)

const defaultCookieName = "greenpower_session"

type Config struct {
	Registry *session.Registry

	// SessionSecret signs the browser cookie; at least 32 bytes.
	SessionSecret []byte
	CookieName    string
	CookieSecure  bool
	CookieMaxAge  time.Duration

	// Metrics is optional; nil disables /metrics.
	Metrics *metrics.Metrics
	Health  event.Dependencies
	// History is optional; nil disables /events/irrigation/latest.
	History http.Handler

	// PingPeriod is the WebSocket keepalive interval.
	PingPeriod time.Duration

	Logger *zap.SugaredLogger
}

type Gateway struct {
	cfg      Config
	registry *session.Registry
	store    *sessions.CookieStore
	views    *template.Template
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.Registry == nil {
		return nil, errors.New("gateway: registry is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, errors.New("gateway: session secret must be at least 32 bytes")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 24 * time.Hour
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	store := sessions.NewCookieStore(cfg.SessionSecret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	views, err := parseViews()
	if err != nil {
		return nil, err
	}

	return &Gateway{
		cfg:      cfg,
		registry: cfg.Registry,
		store:    store,
		views:    views,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      cfg.Logger,
	}, nil
}
