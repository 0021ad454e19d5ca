package middleware

import (
	"context"

	"github.com/andalib/andalib-backend/pkg/enums"
)

type contextKey string

const (
	ctxAdminID contextKey = "admin_id"
	ctxRole    contextKey = "admin_role"
)

// AdminIDFromContext returns the authenticated admin id, or 0 when absent.
func AdminIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxAdminID).(int64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.AdminRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.AdminRole); ok {
		return v
	}
	return ""
}

// WithAdminID injects the admin identifier into the context.
func WithAdminID(ctx context.Context, adminID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdminID, adminID)
}

func WithRole(ctx context.Context, role enums.AdminRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
