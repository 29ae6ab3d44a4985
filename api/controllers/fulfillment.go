package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/fulfillment"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

var (
	errFulfillmentUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable")
	errRulesUnavailable       = pkgerrors.New(pkgerrors.CodeInternal, "rules service unavailable")
)

type fulfillmentTrackingRequest struct {
	TrackingNumber string  `json:"tracking_number" validate:"required,min=1,max=100"`
	TrackingURL    *string `json:"tracking_url,omitempty" validate:"omitempty,httpurl"`
}

// FulfillmentEligibility explains whether an order can be auto-fulfilled.
func FulfillmentEligibility(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.CheckEligibility)
}

// FulfillmentAutoOrder places the supplier order. A refused or failed
// attempt is reported in the body with success=false.
func FulfillmentAutoOrder(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, func(ctx context.Context, orderID int64) (*fulfillment.AutoOrderResult, error) {
		return svc.AutoOrder(ctx, orderID), nil
	})
}

func FulfillmentTracking(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByIDBody(logg, http.StatusOK, func(ctx context.Context, orderID int64, in fulfillmentTrackingRequest) (*orders.TrackingResult, error) {
		return svc.UpdateTracking(ctx, orderID, strings.TrimSpace(in.TrackingNumber), in.TrackingURL)
	})
}

func FulfillmentMarkDelivered(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.MarkDelivered)
}

// FulfillmentProcessQueue runs one pass over paid orders awaiting fulfillment.
func FulfillmentProcessQueue(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serve(logg, svc.ProcessQueue)
}

func FulfillmentSupplierAvailability(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.SupplierAvailability)
}

// ListSuppliers lists active suppliers unless active_only=false.
func ListSuppliers(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := validators.ParseQueryBool(r, "active_only", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := fulfillment.SupplierListInput{IncludeInactive: !activeOnly}
		if platform := strings.TrimSpace(r.URL.Query().Get("platform")); platform != "" {
			input.Platform = &platform
		}
		items, err := svc.ListSuppliers(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func CreateSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveBody(logg, http.StatusCreated, svc.CreateSupplier)
}

func GetSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.GetSupplier)
}

func UpdateSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByIDBody(logg, http.StatusOK, svc.UpdateSupplier)
}

// DeactivateSupplier soft-deletes a supplier.
func DeactivateSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.DeactivateSupplier)
}

func ListProductSuppliers(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByID(logg, svc.ListProductSuppliers)
}

// LinkProductSupplier attaches a supplier to the product in the path. The
// body's product_id must match it.
func LinkProductSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return serveByIDBody(logg, http.StatusCreated, svc.LinkSupplier)
}

func UnlinkProductSupplier(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errFulfillmentUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParsePathID(chi.URLParam(r, "supplierID"), "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.UnlinkSupplier(r.Context(), productID, supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListRules(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serve(logg, svc.List)
}

func CreateRule(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serveBody(logg, http.StatusCreated, svc.Create)
}

func UpdateRule(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serveByIDBody(logg, http.StatusOK, svc.Update)
}

func ToggleRule(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serveByID(logg, svc.Toggle)
}

func DeleteRule(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serveByID(logg, svc.Delete)
}

// EvaluateRules reports which rule decides an order without acting on it.
func EvaluateRules(svc fulfillment.RulesService, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errRulesUnavailable)
	}
	return serveByID(logg, svc.EvaluateOrder)
}
