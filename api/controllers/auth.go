package controllers

import (
	"net/http"

	"github.com/angelmondragon/urgency-engine/api/middleware"
	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/auth"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

// AdminAuthLogin exchanges operator credentials for a bearer token.
func AdminAuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		responses.WriteSuccess(w, result)
	}
}

// AdminAuthMe echoes the operator behind the bearer token.
func AdminAuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, ok := middleware.OperatorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, auth.SessionResponse{Email: op.Email, Role: op.Role, TokenID: op.TokenID})
	}
}
