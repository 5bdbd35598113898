package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	manager Service
}

type loginRequest struct {
	PIN string `json:"pin"`
}

type loginResponse struct {
	SessionToken string `json:"session_token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(manager Service) *HTTPHandler {
	return &HTTPHandler{manager: manager}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/session", h.handleLogin)
	r.Delete("/api/session", h.handleLogout)
}

// RequireSession rejects requests without a valid bearer token while a PIN
// is configured.
func (h *HTTPHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.manager.Enabled() && !h.manager.ResolveSession(BearerToken(r.Header.Get("Authorization"))) {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.manager.Login(req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, ErrAuthDisabled):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidPIN):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{SessionToken: token})
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.manager.Logout(BearerToken(r.Header.Get("Authorization")))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func BearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
