package httpapi

import (
	"context"

	"github.com/lipoic/lipoic-backend/internal/model"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	requestIDCtxKey
)

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*model.User)
	return u, ok
}

// RequestIDFromContext returns the request ID attached by the router.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
