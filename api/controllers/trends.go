package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/trends"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

var errTrendsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "trends service unavailable")

// ListTrendProducts pages through discovered trend products.
func ListTrendProducts(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseTrendListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseTrendListInput(r *http.Request) (trends.ListInput, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 100_000)
	if err != nil {
		return trends.ListInput{}, err
	}
	pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxLimit)
	if err != nil {
		return trends.ListInput{}, err
	}
	minPrice, err := validators.ParseQueryOptionalInt64(r, "min_price")
	if err != nil {
		return trends.ListInput{}, err
	}
	maxPrice, err := validators.ParseQueryOptionalInt64(r, "max_price")
	if err != nil {
		return trends.ListInput{}, err
	}
	minScore, err := validators.ParseQueryOptionalFloat(r, "min_score", 0, 100)
	if err != nil {
		return trends.ListInput{}, err
	}
	sort, err := validators.ParseQueryEnum(r, "sort_by", trends.SortKeys()...)
	if err != nil {
		return trends.ListInput{}, err
	}

	filters := trends.ListFilters{MinPrice: minPrice, MaxPrice: maxPrice, MinScore: minScore, Sort: sort}
	query := r.URL.Query()
	if category := strings.TrimSpace(query.Get("category")); category != "" {
		filters.Category = &category
	}
	// velocity may repeat: ?velocity=rising&velocity=explosive
	for _, raw := range query["velocity"] {
		velocity, err := enums.ParseTrendVelocity(validators.NormalizeToken(raw))
		if err != nil {
			return trends.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid velocity").
				WithDetails(map[string]any{"field": "velocity", "valid_values": enums.TrendVelocities()})
		}
		filters.Velocities = append(filters.Velocities, velocity)
	}
	return trends.ListInput{Page: page, PageSize: pageSize, Filters: filters}, nil
}

func GetTrendProduct(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return serveByID(logg, svc.Get)
}

// ImportTrendProduct copies a trend product into the catalogue.
func ImportTrendProduct(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return serveBody(logg, http.StatusCreated, svc.Import)
}

// SeedTrendProducts loads the demo catalogue into an empty table.
func SeedTrendProducts(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return serve(logg, svc.Seed)
}

func TrendCategories(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return serve(logg, func(ctx context.Context) (map[string]any, error) {
		categories, err := svc.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": categories}, nil
	})
}

func TrendStats(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errTrendsUnavailable)
	}
	return serve(logg, svc.Stats)
}
