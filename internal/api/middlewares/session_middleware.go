package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/currentspace/mychat-api/internal/auth"
)

// Session rejects requests that do not carry a valid session cookie. Every
// failure answers a uniform 401.
func Session(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An empty secret would verify any token MACed with "".
			if secret == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication is not configured"})
				return
			}

			if _, err := auth.Authenticate(r, secret); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
