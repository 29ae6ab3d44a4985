package analytics

import (
	"net/http"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	internalanalytics "github.com/angelmondragon/urgency-engine/internal/analytics"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
	defaultFunnelDays = 7
	maxFunnelDays     = 90
	defaultTopLimit   = 10
	maxTopLimit       = 50
)

// Stats serves the admin dashboard counters.
func Stats(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		stats, err := svc.AdminStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// Overview compares the trailing window against the one before it.
func Overview(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultWindowDays, 1, maxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		overview, err := svc.Overview(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}

// Revenue returns one point per day, zero-filled.
func Revenue(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultWindowDays, 1, maxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		series, err := svc.RevenueSeries(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, series)
	}
}

func Orders(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultWindowDays, 1, maxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		series, err := svc.OrdersSeries(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, series)
	}
}

func TopProducts(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultWindowDays, 1, maxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultTopLimit, 1, maxTopLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.TopProducts(r.Context(), days, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// Funnel reports view to purchase conversion over a shorter default window.
func Funnel(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		days, err := validators.ParseQueryInt(r, "days", defaultFunnelDays, 1, maxFunnelDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		funnel, err := svc.Funnel(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, funnel)
	}
}
