package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	internalorders "github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

var errUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable")

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type trackingRequest struct {
	TrackingNumber string  `json:"tracking_number" validate:"required,min=1,max=100"`
	TrackingURL    *string `json:"tracking_url,omitempty" validate:"omitempty,httpurl"`
}

// List returns orders newest first, optionally narrowed to one status.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errUnavailable)
			return
		}

		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// Detail returns one order.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errUnavailable)
			return
		}
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateStatus moves an order along its lifecycle. Disallowed transitions
// surface as 422 from the state machine.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errUnavailable)
			return
		}
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(validators.NormalizeToken(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"valid_values": enums.OrderStatuses()}))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id)
		}
		result, err := svc.UpdateStatus(ctx, id, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AddTracking records the carrier tracking number and ships the order.
func AddTracking(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errUnavailable)
			return
		}
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload trackingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id)
		}
		result, err := svc.AddTracking(ctx, id, strings.TrimSpace(payload.TrackingNumber), payload.TrackingURL)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func orderID(r *http.Request) (int64, error) {
	return validators.ParsePathID(chi.URLParam(r, "id"), "id")
}

func listInput(r *http.Request) (internalorders.ListInput, error) {
	raw, err := validators.ParseQueryEnum(r, "status", enums.OrderStatuses()...)
	if err != nil {
		return internalorders.ListInput{}, err
	}
	page, err := validators.ParseLimitOffset(r)
	if err != nil {
		return internalorders.ListInput{}, err
	}

	input := internalorders.ListInput{Limit: page.Limit, Offset: page.Offset}
	if raw != "" {
		status := enums.OrderStatus(raw)
		input.Status = &status
	}
	return input, nil
}
