package auth

import (
	"net/http"
	"strings"

	"github.com/andalib/andalib-backend/api/responses"
	"github.com/andalib/andalib-backend/api/validators"
	"github.com/andalib/andalib-backend/internal/auth"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

// AuthLogin exchanges admin credentials for a bearer token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("Cache-Control", "no-store")

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		result, err := svc.Login(ctx, body)
		if err != nil {
			// password never reaches the log; the email only on failure
			if logg != nil && pkgerrors.CodeOf(err) == pkgerrors.CodeUnauthorized {
				logg.Warn(logg.WithField(ctx, "email", body.Email), "auth.login_rejected")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil && result.Admin != nil {
			logg.Info(logg.WithAdminID(ctx, result.Admin.ID), "auth.login")
		}
		responses.WriteSuccess(w, result)
	}
}
