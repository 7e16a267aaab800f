package handlers

import (
	"net/http"
	"time"

	"github.com/codehasanali/rafine-web/internal/session"
	"github.com/codehasanali/rafine-web/pkg/response"

	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLogin checks the operator's credentials against the platform and
// issues the dashboard's own session token. Upstream tokens stay inside the
// service.
func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "email and password are required")
		return
	}

	result, err := h.Upstream.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Logger.Warn("login rejected", zap.String("email", req.Email), zap.Error(err))
		h.writeError(w, err)
		return
	}

	ttl := time.Duration(h.Config.SessionExpirySeconds) * time.Second
	token, err := session.IssueToken(h.Config.SessionSecret, result.User.ID, result.User.Email, result.User.IsAdmin, ttl)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not issue session")
		return
	}

	response.Success(w, map[string]any{
		"token": token,
		"user":  result.User,
	})
}

type gateRequest struct {
	Password string `json:"password"`
}

// AuthGate verifies the shared passphrase shown before the login screen.
func (h *Handler) AuthGate(w http.ResponseWriter, r *http.Request) {
	var req gateRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := session.CheckGatePassword(h.Config.GatePasswordHash, req.Password); err != nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "wrong password")
		return
	}
	response.Success(w, map[string]any{"granted": true})
}

// AuthMe echoes the session identity back to the browser.
func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	sc, ok := session.FromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return
	}
	response.Success(w, map[string]any{
		"userId":  sc.UserID,
		"email":   sc.Email,
		"isAdmin": sc.IsAdmin,
	})
}
