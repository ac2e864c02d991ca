// Package auth implements the two shared-secret realms: game processes
// present X-API-Key, the admin panel presents X-Admin-Key. There are no
// users, sessions or tokens.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/openblox/liveops/internal/domain"
)

// Header names checked by the middleware.
const (
	ProcessKeyHeader = "X-API-Key"
	AdminKeyHeader   = "X-Admin-Key"
)

// Secrets carries the configured shared secrets.
type Secrets struct {
	ProcessKey string
	AdminKey   string
}

// RequireProcess admits only requests carrying the game-process secret.
func RequireProcess(s Secrets) func(http.Handler) http.Handler {
	return requireSecret(ProcessKeyHeader, s.ProcessKey)
}

// RequireAdmin admits only requests carrying the admin secret.
func RequireAdmin(s Secrets) func(http.Handler) http.Handler {
	return requireSecret(AdminKeyHeader, s.AdminKey)
}

func requireSecret(header, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Allowed(secret, r.Header.Get(header)) {
				respondUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allowed reports whether the presented secret matches the configured one.
// An unconfigured secret denies everything.
func Allowed(configured, presented string) bool {
	if configured == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}

func respondUnauthorized(w http.ResponseWriter) {
	appErr := domain.ErrUnauthorized("bad or missing secret")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_, _ = w.Write([]byte(`{"code":"` + appErr.Code + `","message":"` + appErr.Message + `"}`))
}
