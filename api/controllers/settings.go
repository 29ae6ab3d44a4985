package controllers

import (
	"net/http"

	"github.com/angelmondragon/urgency-engine/internal/settings"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

var errSettingsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable")

// GetSettings returns the storefront branding and policies, creating the
// defaults on first read.
func GetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errSettingsUnavailable)
	}
	return serve(logg, svc.Get)
}

// AdminUpdateSettings applies a partial update; absent fields are kept.
func AdminUpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errSettingsUnavailable)
	}
	return serveBody(logg, http.StatusOK, svc.Update)
}
