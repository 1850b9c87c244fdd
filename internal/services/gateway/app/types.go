package app

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

// ---------- Payloads ----------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	State         model.SessionState `json:"state"`
	Authenticated bool               `json:"authenticated"`
	User          string             `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sessionPayload(state model.SessionState, s model.Session) sessionResponse {
	return sessionResponse{State: state, Authenticated: s.Authenticated, User: s.User}
}

// ---------- Helpers ----------

// wantsJSON reports whether the client speaks JSON rather than HTML forms.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
