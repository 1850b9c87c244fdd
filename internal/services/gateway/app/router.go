package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/greenpower/internal/services/event"
)

// Router wires every route of the gateway.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	if g.cfg.Metrics != nil {
		r.Use(g.cfg.Metrics.Middleware)
	}
	r.Use(g.logRequests)

	r.HandleFunc("/", g.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/login", g.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", g.HandleLogout).Methods(http.MethodPost)
	r.HandleFunc("/ws", g.HandleLive).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", g.HandleSession).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", g.withDashboard(g.handleSnapshot)).Methods(http.MethodGet)
	api.HandleFunc("/irrigation", g.withDashboard(g.handleIrrigation)).Methods(http.MethodPost)
	api.HandleFunc("/lights", g.withDashboard(g.handleLights)).Methods(http.MethodPost)
	api.HandleFunc("/cameras", g.withDashboard(g.handleCameras)).Methods(http.MethodPost)
	api.HandleFunc("/notifications/toggle", g.withDashboard(g.handleToggleNotifications)).Methods(http.MethodPost)
	api.HandleFunc("/notifications", g.withDashboard(g.handleClearNotifications)).Methods(http.MethodDelete)

	r.Handle("/healthz", event.NewHealthHandler(g.cfg.Health)).Methods(http.MethodGet)
	r.Handle("/readyz", event.NewReadyHandler(g.cfg.Health)).Methods(http.MethodGet)
	if g.cfg.Metrics != nil {
		r.Handle("/metrics", g.cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	if g.cfg.History != nil {
		r.Handle("/events/irrigation/latest", g.cfg.History).Methods(http.MethodGet)
	}
	return r
}

func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		g.log.Debugw("gateway: request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
