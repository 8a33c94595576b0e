package http

import (
	"context"
	"net/http"

	"financas/internal/core"
	"financas/internal/log"
)

// Identity headers are set by the authenticating proxy in front of the API.
const (
	UserIDHeader    = "X-User-ID"
	UserLabelHeader = "X-User-Name"
)

type userKeyType struct{}

type user struct {
	id    string
	label string
}

// requireUser rejects API calls without an identity. The user ID scopes
// every store read.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeInput(r.Header.Get(UserIDHeader))
		if !core.ValidUserID(id) {
			ErrorResponse(http.StatusUnauthorized, "missing or invalid user identity").Write(w)
			return
		}
		label := sanitizeInput(r.Header.Get(UserLabelHeader))
		if label == "" {
			label = id
		}

		ctx := context.WithValue(r.Context(), userKeyType{}, user{id: id, label: label})
		ctx = context.WithValue(ctx, log.LoggerContextKey, log.FromContext(ctx).With(log.FieldUserID, id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user of the request, or "".
func UserID(ctx context.Context) string {
	u, _ := ctx.Value(userKeyType{}).(user)
	return u.id
}

// UserLabel returns the display name of the authenticated user.
func UserLabel(ctx context.Context) string {
	u, _ := ctx.Value(userKeyType{}).(user)
	return u.label
}

func userKey(r *http.Request) string {
	return UserID(r.Context())
}
