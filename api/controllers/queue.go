package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/suggestions"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

var errSuggestionsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "suggestion service unavailable")

// AdminListQueue lists product suggestions awaiting review. Pending is the default filter.
func AdminListQueue(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errSuggestionsUnavailable)
			return
		}

		rawStatus, err := validators.ParseQueryEnum(r, "status", enums.SuggestionStatuses()...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := enums.SuggestionStatusPending
		if rawStatus != "" {
			status = enums.SuggestionStatus(rawStatus)
		}
		page, err := validators.ParseLimitOffset(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), suggestions.ListInput{Status: &status, Limit: page.Limit, Offset: page.Offset})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminApproveSuggestion turns a pending suggestion into a catalogue product.
func AdminApproveSuggestion(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errSuggestionsUnavailable)
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload suggestions.ApproveInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		product, err := svc.Approve(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminRejectSuggestion(svc suggestions.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errSuggestionsUnavailable)
	}
	return serveByID(logg, svc.Reject)
}
