package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyUserRole contextKey = "role"
	ContextKeyClientID contextKey = "client_id"
)

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeySubject).(string)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

func ClientIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyClientID).(string)
	return v, ok
}

// ClientID records the X-Client-ID header, when present, in the request
// context. Stream subscribers send it so reconnects are attributable to
// one dashboard client in the logs.
func ClientID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Client-ID"); id != "" {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyClientID, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
