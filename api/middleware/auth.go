package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andalib/andalib-backend/api/responses"
	pkgAuth "github.com/andalib/andalib-backend/pkg/auth"
	"github.com/andalib/andalib-backend/pkg/config"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

// Auth requires a valid admin bearer token. The admin id and role land in the
// request context and on every log line of the request.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, pkgAuth.ErrTokenExpired) {
					msg = "token expired"
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg))
				return
			}

			ctx := WithRole(WithAdminID(r.Context(), claims.AdminID), claims.Role)
			if logg != nil {
				ctx = logg.WithFields(logg.WithAdminID(ctx, claims.AdminID), map[string]any{
					"admin_role": claims.Role.String(),
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accepts "Bearer <jwt>" or a bare token
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return raw
}
