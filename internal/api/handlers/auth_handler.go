package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/currentspace/mychat-api/internal/auth"
)

type AuthHandler struct {
	verifier *auth.GoogleVerifier
	secret   string
	cache    *auth.IdentityCache
}

func NewAuthHandler(verifier *auth.GoogleVerifier, secret string, cache *auth.IdentityCache) *AuthHandler {
	return &AuthHandler{verifier: verifier, secret: secret, cache: cache}
}

type loginRequest struct {
	Credential string `json:"credential"`
}

// GoogleLogin exchanges a Google ID token assertion for a signed session
// cookie. Verification failures stay coarse on purpose: the client learns
// only 400 / 401 / 500, never which internal check failed.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" || !h.verifier.Configured() {
		writeError(w, http.StatusInternalServerError, "Authentication is not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credential == "" {
		writeError(w, http.StatusBadRequest, "No credential provided")
		return
	}

	user, err := h.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrBadAudience) {
			writeError(w, http.StatusUnauthorized, "Invalid token audience")
			return
		}
		log.Printf("auth error: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	token, err := auth.IssueToken(user, h.secret, auth.SessionTTL)
	if err != nil {
		log.Printf("issue token failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	h.cache.Put(token, user, time.Now().Add(auth.SessionTTL))
	http.SetCookie(w, auth.NewSessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// Me returns the identity carried by the session cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeError(w, http.StatusInternalServerError, "Authentication is not configured")
		return
	}

	token, err := auth.TokenFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if user, ok := h.cache.Get(token); ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}

	user, err := auth.ParseToken(token, h.secret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	h.cache.Put(token, user, time.Now().Add(time.Minute))
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout clears the session cookie. Idempotent: succeeds with or without an
// existing cookie. The token itself stays valid until exp; there is no
// server-side revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := auth.TokenFromRequest(r); err == nil {
		h.cache.Invalidate(token)
	}
	http.SetCookie(w, auth.ClearedSessionCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
