package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/insights"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

// insightHandler adapts a no-argument insights read into a handler.
func insightHandler[T any](svc insights.Service, logg *logger.Logger, read func(insights.Service, context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "insights service unavailable"))
			return
		}
		result, err := read(svc, r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InsightsDailyDigest(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return insightHandler(svc, logg, insights.Service.DailyDigest)
}

func InsightsAnomalies(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return insightHandler(svc, logg, insights.Service.Anomalies)
}

func InsightsPredictions(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return insightHandler(svc, logg, insights.Service.Predictions)
}

func InsightsPriceOptimization(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return insightHandler(svc, logg, insights.Service.PriceOptimizations)
}

func InsightsSummary(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return insightHandler(svc, logg, insights.Service.Summary)
}

// InsightsProduct returns the performance breakdown for one live product.
func InsightsProduct(svc insights.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "insights service unavailable"))
			return
		}
		productID, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ProductInsight(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
