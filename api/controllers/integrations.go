package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/integrations"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

var errIntegrationsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "integrations service unavailable")

// IntegrationPlatforms lists the platform catalogue with setup fields.
func IntegrationPlatforms(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, svc.Platforms())
	}
}

func ListIntegrations(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serve(logg, svc.List)
}

func GetIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveByID(logg, svc.Get)
}

// ConnectIntegration stores a new store connection and tests it once.
func ConnectIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveBody(logg, http.StatusCreated, svc.Connect)
}

func TestIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveByID(logg, svc.Test)
}

func UpdateIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveByIDBody(logg, http.StatusOK, svc.Update)
}

// DisconnectIntegration deactivates the connection; the row is kept.
func DisconnectIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveByID(logg, svc.Disconnect)
}

// SyncIntegration pulls products, orders or both depending on sync_type
// (default all).
func SyncIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := validators.ParseQueryEnum(r, "sync_type", integrations.SyncAll, integrations.SyncProducts, integrations.SyncOrders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serveByID(logg, func(ctx context.Context, id int64) (*integrations.SyncResult, error) {
			return svc.Sync(ctx, id, scope)
		})(w, r)
	}
}

func IntegrationStats(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errIntegrationsUnavailable)
	}
	return serveByID(logg, svc.Stats)
}
