package app

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
)

const sessionIDKey = "sid"

// sessionID returns the browser session id carried by the cookie, issuing a
// new one when the cookie is missing or does not verify.
func (g *Gateway) sessionID(w http.ResponseWriter, r *http.Request) string {
	s, err := g.store.Get(r, g.cfg.CookieName)
	if err != nil {
		// tampered or signed with an old secret: start over
		g.log.Debugw("gateway: discarding session cookie", "error", err)
	}
	if id, ok := s.Values[sessionIDKey].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.Values[sessionIDKey] = id
	if err := s.Save(r, w); err != nil {
		g.log.Warnw("gateway: saving session cookie", "error", err)
	}
	return id
}

// controller returns the session controller of this browser.
func (g *Gateway) controller(w http.ResponseWriter, r *http.Request) *session.Controller {
	return g.registry.Get(g.sessionID(w, r))
}
