package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

var errNotificationsUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable")

func notificationParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "notification id required").
			WithDetails(map[string]any{"field": "id"})
	}
	return id, nil
}

// ListNotifications returns the operator's notifications, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		params := notifications.ListParams{}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		unreadOnly, err := validators.ParseQueryBool(r, "unread_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.UnreadOnly = unreadOnly

		rawType, err := validators.ParseQueryEnum(r, "type", enums.NotificationTypes()...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rawType != "" {
			typ := enums.NotificationType(rawType)
			params.Type = &typ
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func NotificationStats(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return serve(logg, svc.Stats)
}

type createNotificationRequest struct {
	Type     string  `json:"type" validate:"required"`
	Title    string  `json:"title" validate:"required,min=1,max=200"`
	Message  string  `json:"message" validate:"required,min=1,max=2000"`
	Link     *string `json:"link,omitempty" validate:"omitempty,max=500"`
	Priority string  `json:"priority,omitempty"`
}

func (r createNotificationRequest) toInput() (notifications.CreateInput, error) {
	typ, err := enums.ParseNotificationType(validators.NormalizeToken(r.Type))
	if err != nil {
		return notifications.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}
	priority := enums.NotificationPriorityMedium
	if r.Priority != "" {
		priority, err = enums.ParseNotificationPriority(validators.NormalizeToken(r.Priority))
		if err != nil {
			return notifications.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
	}
	return notifications.CreateInput{
		Type:      typ,
		Title:     validators.SanitizeString(r.Title, 200),
		Message:   validators.SanitizeString(r.Message, 2000),
		Priority:  priority,
		ActionURL: r.Link,
	}, nil
}

func CreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createNotificationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// MarkNotificationRead marks a single notification as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := notificationParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkRead(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// MarkAllNotificationsRead marks all of the operator's notifications as read.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := svc.MarkAllRead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": updated})
	}
}

func DeleteNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := notificationParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func UnreadNotificationCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UnreadCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"unread_count": count})
	}
}

// GenerateDemoNotifications seeds a handful of sample notifications.
func GenerateDemoNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errNotificationsUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		created, err := svc.GenerateDemo(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"created": len(created), "notifications": created})
	}
}
