package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/social"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

const maxHashtagCount = 30

func socialHandler[In any, Out any](svc social.Service, logg *logger.Logger, generate func(social.Service, context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "social service unavailable"))
			return
		}
		var payload In
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := generate(svc, r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SocialInstagram(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.Instagram)
}

func SocialTikTok(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.TikTok)
}

func SocialFacebook(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.Facebook)
}

func SocialTwitter(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.Twitter)
}

func SocialPinterest(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.Pinterest)
}

// SocialGenerateAll writes one post per platform for a catalogue product.
func SocialGenerateAll(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return socialHandler(svc, logg, social.Service.GenerateAll)
}

func SocialTrendingHashtags(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "social service unavailable"))
			return
		}
		count, err := validators.ParseQueryInt(r, "count", social.DefaultHashtagCount, 0, maxHashtagCount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		responses.WriteSuccess(w, svc.TrendingHashtags(strings.TrimSpace(query.Get("platform")), strings.TrimSpace(query.Get("category")), count))
	}
}

func SocialBestTimes(svc social.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "social service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.BestTimes(strings.TrimSpace(r.URL.Query().Get("platform"))))
	}
}
