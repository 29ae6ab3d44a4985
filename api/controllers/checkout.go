package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/checkout"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

type checkoutRequest struct {
	ProductSlug   string  `json:"product_slug" validate:"required,slug"`
	CustomerEmail *string `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// CreateCheckout starts a hosted checkout session for one product.
func CreateCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), checkout.Input{
			ProductSlug:   strings.TrimSpace(payload.ProductSlug),
			CustomerEmail: payload.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
