package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
	"github.com/LeonardoBeccarini/greenpower/internal/services/dashboard"
	"github.com/LeonardoBeccarini/greenpower/internal/services/session"
)

// HandleIndex renders the dashboard when logged in, else the login view.
func (g *Gateway) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := g.controller(w, r)
	if dash, err := ctrl.Dashboard(); err == nil {
		g.render(w, http.StatusOK, "dashboard.html", newDashboardView(dash.Snapshot()))
		return
	}
	g.render(w, http.StatusOK, "login.html", newLoginView("", "", ctrl.State() == model.StateAuthenticating))
}

func (g *Gateway) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctrl := g.controller(w, r)
	asJSON := wantsJSON(r)

	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid login payload")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}

	err := ctrl.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil, errors.Is(err, session.ErrAlreadyLoggedIn) && !asJSON:
		if asJSON {
			writeJSON(w, http.StatusOK, sessionPayload(ctrl.State(), ctrl.Session()))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)

	case errors.Is(err, session.ErrInvalidCredentials):
		if asJSON {
			writeError(w, http.StatusUnauthorized, session.InvalidCredentialsAlert)
			return
		}
		g.render(w, http.StatusUnauthorized, "login.html", newLoginView(req.Username, session.InvalidCredentialsAlert, false))

	case errors.Is(err, session.ErrLoginInProgress),
		errors.Is(err, session.ErrAlreadyLoggedIn),
		errors.Is(err, session.ErrLoginCanceled):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// client gone while the login was resolving
		writeError(w, http.StatusRequestTimeout, err.Error())

	default:
		g.log.Errorw("gateway: login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
	}
}

func (g *Gateway) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctrl := g.controller(w, r)
	ctrl.Logout()
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, sessionPayload(ctrl.State(), ctrl.Session()))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (g *Gateway) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctrl := g.controller(w, r)
	writeJSON(w, http.StatusOK, sessionPayload(ctrl.State(), ctrl.Session()))
}

type dashboardHandler func(w http.ResponseWriter, r *http.Request, d *dashboard.Controller)

// withDashboard answers 401 unless the browser has a mounted dashboard.
func (g *Gateway) withDashboard(h dashboardHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash, err := g.controller(w, r).Dashboard()
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h(w, r, dash)
	}
}

func (g *Gateway) handleSnapshot(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	writeJSON(w, http.StatusOK, d.Snapshot())
}

// handleIrrigation answers 202 when a run starts and 200 when one was already in flight.
func (g *Gateway) handleIrrigation(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	status := http.StatusOK
	if d.TriggerIrrigation() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, d.Snapshot())
}

func (g *Gateway) handleLights(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	d.ToggleLights()
	writeJSON(w, http.StatusOK, d.Snapshot())
}

func (g *Gateway) handleCameras(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	d.ViewCameras()
	writeJSON(w, http.StatusOK, d.Snapshot())
}

func (g *Gateway) handleToggleNotifications(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	d.ToggleNotifications()
	writeJSON(w, http.StatusOK, d.Snapshot())
}

func (g *Gateway) handleClearNotifications(w http.ResponseWriter, _ *http.Request, d *dashboard.Controller) {
	d.ClearNotifications()
	writeJSON(w, http.StatusOK, d.Snapshot())
}
