package server

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

// UserHeader selects the learner for a request.
const UserHeader = "X-Olive-User"

type contextKey int

const userIDKey contextKey = iota

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// UserIDFromContext returns the learner id set by the identity middleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// identity resolves the learner from the header or the user query
// parameter (browsers cannot set headers on WebSocket upgrades), falling
// back to defaultUser.
func identity(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(UserHeader))
			if id == "" {
				id = strings.TrimSpace(r.URL.Query().Get("user"))
			}
			if id == "" {
				id = defaultUser
			}
			if !userIDPattern.MatchString(id) {
				Error(w, http.StatusBadRequest, "invalid user id")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
