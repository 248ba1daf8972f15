// Package session carries the authenticated user through a request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"go.uber.org/zap"
)

// ErrNoSession is returned when a request carries no authenticated user.
var ErrNoSession = errors.New("no authenticated session")

// Session identifies the user a request acts for.
type Session struct {
	UserID string
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok || s.UserID == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Middleware builds a session from the identity header set by the upstream
// auth provider and rejects requests without one.
func Middleware(logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(constants.UserIDHeader))
		if userID == "" {
			logger.Debug("request without session",
				zap.String("op", "session.Middleware"),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrNoSession.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Session{UserID: userID})))
	})
}
