package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	"github.com/angelmondragon/urgency-engine/internal/chatbot"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

var errChatbotUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable")

func sessionParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id required").
			WithDetails(map[string]any{"field": "session_id"})
	}
	return id, nil
}

// serveBySession is serveByID for the {sessionID} path parameter.
func serveBySession[Out any](logg *logger.Logger, fn func(context.Context, string) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := fn(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ChatbotMessage answers one customer message, opening a session when none is given.
func ChatbotMessage(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return serveBody(logg, http.StatusOK, svc.SendMessage)
}

func ChatbotHistory(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return serveBySession(logg, svc.History)
}

// ChatbotEscalate hands the session to a human and opens a support ticket.
// The body is optional.
func ChatbotEscalate(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatbot.EscalateInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		serveBySession(logg, func(ctx context.Context, sessionID string) (*chatbot.Escalation, error) {
			return svc.Escalate(ctx, sessionID, payload)
		})(w, r)
	}
}

func ChatbotFAQTopics(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]any{"topics": svc.FAQTopics()})
	}
}

func ChatbotFAQ(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		answer, err := svc.FAQ(validators.NormalizeToken(chi.URLParam(r, "topic")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, answer)
	}
}

func ChatbotResolve(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return serveBySession(logg, svc.Resolve)
}

// ChatbotSessions lists sessions for the support dashboard, most recently
// active first.
func ChatbotSessions(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		raw, err := validators.ParseQueryEnum(r, "status", enums.ChatSessionStatuses()...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var status *enums.ChatSessionStatus
		if raw != "" {
			parsed := enums.ChatSessionStatus(raw)
			status = &parsed
		}
		result, err := svc.ListSessions(r.Context(), status, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ChatbotStats(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return serve(logg, svc.Stats)
}

// ChatbotAgentMessage appends a human agent reply to the session.
func ChatbotAgentMessage(svc chatbot.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, errChatbotUnavailable)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatbot.AgentInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serveBySession(logg, func(ctx context.Context, sessionID string) (*chatbot.AgentResult, error) {
			return svc.AgentMessage(ctx, sessionID, payload)
		})(w, r)
	}
}
