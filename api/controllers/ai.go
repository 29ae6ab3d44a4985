package controllers

import (
	"net/http"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/ai"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

// aiHandler decodes a request body and answers with the generator's result.
// Generators never fail: a missing or failing model yields heuristic output.
func aiHandler[In any, Out any](svc ai.Service, logg *logger.Logger, run func(ai.Service, *http.Request, In) Out) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ai service unavailable"))
			return
		}
		var payload In
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, run(svc, r, payload))
	}
}

func AIGenerateDescription(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return aiHandler(svc, logg, func(s ai.Service, r *http.Request, in ai.DescriptionInput) ai.DescriptionResult {
		return s.GenerateDescription(r.Context(), in)
	})
}

func AIGenerateAdCopy(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return aiHandler(svc, logg, func(s ai.Service, r *http.Request, in ai.AdCopyInput) ai.AdCopyResult {
		return s.GenerateAdCopy(r.Context(), in)
	})
}

func AIRecommendPricing(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return aiHandler(svc, logg, func(s ai.Service, r *http.Request, in ai.PricingInput) ai.PricingResult {
		return s.RecommendPricing(r.Context(), in)
	})
}

func AIGenerateBulk(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return aiHandler(svc, logg, func(s ai.Service, r *http.Request, in ai.BulkInput) ai.BulkResult {
		return s.GenerateBulk(r.Context(), in)
	})
}

// AIHealth reports whether a model is configured.
func AIHealth(svc ai.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ai service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Health())
	}
}
