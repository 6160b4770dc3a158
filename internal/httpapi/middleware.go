package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/service"
	"github.com/lipoic/lipoic-backend/internal/token"
)

// Authenticator resolves bearer session tokens to stored users.
type Authenticator struct {
	tokens *token.Service
	users  service.UserStorage
}

// NewAuthenticator returns the bearer-token middleware provider.
func NewAuthenticator(tokens *token.Service, users service.UserStorage) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// RequireAuth rejects requests without a valid session for an existing user.
// Every failure mode (missing header, bad signature, expired token, deleted
// user) answers 401 with the same code, so callers cannot probe which check
// failed.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respond(w, http.StatusUnauthorized, CodeAuthError, nil)
			return
		}

		userID, ok := a.tokens.VerifySessionToken(raw)
		if !ok {
			respond(w, http.StatusUnauthorized, CodeAuthError, nil)
			return
		}
		id, err := bson.ObjectIDFromHex(userID)
		if err != nil {
			respond(w, http.StatusUnauthorized, CodeAuthError, nil)
			return
		}

		user, err := a.users.FindByID(r.Context(), id)
		if err != nil {
			respond(w, http.StatusUnauthorized, CodeAuthError, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	})
}

// requestID tags each request with a fresh UUID, exposed in the context and
// the X-Request-Id response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requestLogger emits one structured log line per completed request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			log.InfoContext(r.Context(), "http request",
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// recoverer converts handler panics into a 500 instead of tearing down the
// connection.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.ErrorContext(r.Context(), "panic in handler",
						slog.String("request_id", RequestIDFromContext(r.Context())),
						slog.Any("panic", rec),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
