package chatbot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	historyWindow        = 10
	lastMessagePreview   = 100
	ticketSummaryLimit   = 1000
	refundEscalateCents  = 10000
	fallbackConfidence   = 0.75
	defaultListLimit     = 50
	defaultAgentName     = "Support Agent"
	ticketLayout         = "20060102150405"
	escalationReply      = "Your conversation has been escalated to a human support agent. They will review your case and respond shortly."
	escalationTurnaround = "Within 2 hours during business hours (9 AM - 6 PM EST)"
)

var errSessionNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "Session not found")

type orderLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Order, error)
}

type productLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// Service answers customer chat messages and manages support sessions.
type Service interface {
	SendMessage(ctx context.Context, input SendInput) (*Reply, error)
	History(ctx context.Context, sessionID string) (*History, error)
	Escalate(ctx context.Context, sessionID string, input EscalateInput) (*Escalation, error)
	Resolve(ctx context.Context, sessionID string) (*ResolveResult, error)
	ListSessions(ctx context.Context, status *enums.ChatSessionStatus, limit int) (*SessionList, error)
	Stats(ctx context.Context) (*Stats, error)
	FAQTopics() []FAQTopic
	FAQ(topic string) (*FAQAnswer, error)
	AgentMessage(ctx context.Context, sessionID string, input AgentInput) (*AgentResult, error)
}

// ServiceParams wires the chatbot.
type ServiceParams struct {
	Store    kvstore.Store
	Policy   *ai.Policy
	Orders   orderLookup
	Products productLookup
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	sessions sessionStore
	policy   *ai.Policy
	orders   orderLookup
	products productLookup
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// NewService builds the chatbot. Orders, products and notifier are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat session store required")
	}
	return &service{
		sessions: sessionStore{kv: params.Store},
		policy:   params.Policy,
		orders:   params.Orders,
		products: params.Products,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) SendMessage(ctx context.Context, input SendInput) (*Reply, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]any{"field": "message"})
	}
	sessionID := uuid.NewString()
	if input.SessionID != nil && strings.TrimSpace(*input.SessionID) != "" {
		sessionID = strings.TrimSpace(*input.SessionID)
	}

	custCtx := customerContext{customerName: input.CustomerName}
	if input.OrderID != nil {
		custCtx.order = s.lookupOrder(ctx, *input.OrderID)
	}
	if input.ProductID != nil {
		custCtx.product = s.lookupProduct(ctx, *input.ProductID)
	}

	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if input.CustomerEmail != nil && *input.CustomerEmail != "" {
		session.CustomerEmail = input.CustomerEmail
	}
	if input.CustomerName != nil && *input.CustomerName != "" {
		session.CustomerName = input.CustomerName
	}

	history := session.Messages
	sentAt := s.now().UTC()
	session.Messages = append(session.Messages, Message{Role: RoleUser, Content: text, Timestamp: sentAt})

	answer := s.respond(ctx, text, history, custCtx)
	session.Messages = append(session.Messages, Message{
		Role:      RoleAssistant,
		Content:   answer.Response,
		Timestamp: s.now().UTC(),
		Metadata: map[string]any{
			"confidence":  answer.Confidence,
			"intent":      answer.Intent,
			"needs_human": answer.NeedsHuman,
		},
	})
	session.UpdatedAt = s.now().UTC()
	if answer.NeedsHuman && session.Status == enums.ChatSessionStatusActive {
		session.Status = enums.ChatSessionStatusPendingEscalation
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	answer.SessionID = session.ID
	answer.Timestamp = sentAt
	return answer, nil
}

// respond picks a remote reply when available and the intent fallback otherwise.
func (s *service) respond(ctx context.Context, message string, history []Message, cc customerContext) *Reply {
	intent := DetectIntent(message)
	needsHuman := intent == IntentEscalationRequest
	if intent == IntentReturnRefund && cc.order != nil && cc.order.TotalCents > refundEscalateCents {
		needsHuman = true
	}
	reply := &Reply{
		SuggestedActions: SuggestedActions(intent),
		NeedsHuman:       needsHuman,
		Intent:           intent,
	}

	if s.policy.Enabled() {
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		msgs := make([]ai.Message, 0, len(history)+1)
		for _, m := range history {
			// the messages API only accepts user and assistant turns
			if m.Role != RoleUser && m.Role != RoleAssistant {
				continue
			}
			msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
		}
		msgs = append(msgs, ai.Message{
			Role:    RoleUser,
			Content: "Customer Context:\n" + cc.describe() + "\n\nCustomer Message: " + message,
		})
		if text, ok := s.policy.CompleteText(ctx, "chatbot.reply", ai.CompletionRequest{
			System:    systemPrompt,
			Messages:  msgs,
			MaxTokens: 500,
		}); ok {
			reply.Response = text
			reply.Confidence = remoteConfidence(text, needsHuman)
			return reply
		}
	}

	reply.Response = fallbackReply(intent)
	if intent == IntentOrderStatus && cc.order != nil {
		reply.Response = cc.order.statusReply()
	}
	reply.Confidence = fallbackConfidence
	return reply
}

func remoteConfidence(text string, needsHuman bool) float64 {
	lower := strings.ToLower(text)
	switch {
	case needsHuman || strings.Contains(text, "I'm not sure") || strings.Contains(lower, "human"):
		return 0.6
	case strings.Contains(lower, "definitely") || strings.Contains(lower, "your order") || strings.Contains(lower, "the status is"):
		return 0.95
	default:
		return 0.85
	}
}

func (s *service) History(ctx context.Context, sessionID string) (*History, error) {
	session, err := s.mustGet(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &History{
		SessionID:     session.ID,
		Status:        session.Status,
		CustomerEmail: session.CustomerEmail,
		CustomerName:  session.CustomerName,
		Messages:      session.Messages,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}, nil
}

func (s *service) Escalate(ctx context.Context, sessionID string, input EscalateInput) (*Escalation, error) {
	priority := enums.NotificationPriorityMedium
	if input.Priority != nil && *input.Priority != "" {
		priority = enums.NotificationPriority(*input.Priority)
		if !priority.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid priority '%s'", *input.Priority).
				WithDetails(map[string]any{"valid_priorities": enums.NotificationPriorities()})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.mustGet(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if input.CustomerEmail != nil && *input.CustomerEmail != "" {
		session.CustomerEmail = input.CustomerEmail
	}

	now := s.now().UTC()
	ticket := Ticket{
		ID:                  "TKT-" + now.Format(ticketLayout),
		CustomerEmail:       "unknown@example.com",
		Subject:             "Customer requested human support",
		Priority:            priority,
		Status:              "open",
		ConversationSummary: summarize(session.Messages),
		CreatedAt:           now,
	}
	if session.CustomerEmail != nil {
		ticket.CustomerEmail = *session.CustomerEmail
	}
	if input.Reason != nil && strings.TrimSpace(*input.Reason) != "" {
		ticket.Subject = strings.TrimSpace(*input.Reason)
	}

	session.Status = enums.ChatSessionStatusEscalated
	session.EscalatedAt = &now
	session.UpdatedAt = now
	session.Messages = append(session.Messages, Message{
		Role:      RoleSystem,
		Content:   fmt.Sprintf("Conversation escalated to human support. Ticket #%s created.", ticket.ID),
		Timestamp: now,
	})
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.notifyEscalation(ctx, session.ID, ticket)

	return &Escalation{
		TicketID:              ticket.ID,
		Message:               escalationReply,
		EstimatedResponseTime: escalationTurnaround,
		Ticket:                ticket,
	}, nil
}

func (s *service) Resolve(ctx context.Context, sessionID string) (*ResolveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.mustGet(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session.Status = enums.ChatSessionStatusResolved
	session.ResolvedAt = &now
	session.UpdatedAt = now
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &ResolveResult{Message: "Session marked as resolved", SessionID: session.ID}, nil
}

func (s *service) ListSessions(ctx context.Context, status *enums.ChatSessionStatus, limit int) (*SessionList, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status '%s'", *status).
			WithDetails(map[string]any{"valid_statuses": enums.ChatSessionStatuses()})
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	sessions, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		if status != nil && session.Status != *status {
			continue
		}
		summary := SessionSummary{
			ID:            session.ID,
			Status:        session.Status,
			MessageCount:  len(session.Messages),
			CustomerEmail: session.CustomerEmail,
			CustomerName:  session.CustomerName,
			CreatedAt:     session.CreatedAt,
			UpdatedAt:     session.UpdatedAt,
		}
		if n := len(session.Messages); n > 0 {
			preview := truncate(session.Messages[n-1].Content, lastMessagePreview)
			summary.LastMessage = &preview
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	total := len(summaries)
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return &SessionList{Sessions: summaries, Total: total, FilteredByStatus: status}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	sessions, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalSessions: len(sessions)}
	for _, session := range sessions {
		switch session.Status {
		case enums.ChatSessionStatusActive:
			stats.Active++
		case enums.ChatSessionStatusPendingEscalation:
			stats.PendingEscalation++
		case enums.ChatSessionStatusEscalated:
			stats.Escalated++
		case enums.ChatSessionStatusResolved:
			stats.Resolved++
		}
	}
	stats.ResolutionRate = types.Percent(float64(stats.Resolved), float64(stats.TotalSessions), 1)
	return stats, nil
}

func (s *service) FAQTopics() []FAQTopic {
	return append([]FAQTopic(nil), faqTopics...)
}

func (s *service) FAQ(topic string) (*FAQAnswer, error) {
	answer, ok := faqAnswers[topic]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "FAQ topic not found")
	}
	return &FAQAnswer{Topic: topic, Response: answer}, nil
}

func (s *service) AgentMessage(ctx context.Context, sessionID string, input AgentInput) (*AgentResult, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]any{"field": "message"})
	}
	agent := strings.TrimSpace(input.AgentName)
	if agent == "" {
		agent = defaultAgentName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.mustGet(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session.Messages = append(session.Messages, Message{
		Role:      RoleAssistant,
		Content:   text,
		Timestamp: now,
		Metadata:  map[string]any{"from_agent": true, "agent_name": agent},
	})
	session.UpdatedAt = now
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &AgentResult{Success: true, Timestamp: now}, nil
}

func (s *service) getOrCreate(ctx context.Context, id string) (*Session, error) {
	session, found, err := s.sessions.get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat session")
	}
	if found {
		return session, nil
	}
	now := s.now().UTC()
	return &Session{
		ID:        id,
		Status:    enums.ChatSessionStatusActive,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *service) mustGet(ctx context.Context, id string) (*Session, error) {
	session, found, err := s.sessions.get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat session")
	}
	if !found {
		return nil, errSessionNotFound
	}
	return session, nil
}

func (s *service) save(ctx context.Context, session *Session) error {
	if err := s.sessions.save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save chat session")
	}
	return nil
}

func (s *service) loadAll(ctx context.Context) ([]Session, error) {
	sessions, err := s.sessions.all(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list chat sessions")
	}
	return sessions, nil
}

// lookupOrder resolves order context; unknown or malformed ids are ignored.
func (s *service) lookupOrder(ctx context.Context, raw string) *orderContext {
	if s.orders == nil {
		return nil
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil {
		return nil
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.warn(ctx, "chatbot.order_lookup_failed", err)
		}
		return nil
	}
	return &orderContext{
		OrderID:        strconv.FormatInt(order.ID, 10),
		Status:         order.Status.String(),
		Total:          types.Dollars(order.AmountCents),
		TotalCents:     order.AmountCents,
		TrackingNumber: order.TrackingNumber,
	}
}

func (s *service) lookupProduct(ctx context.Context, id int64) *productContext {
	if s.products == nil {
		return nil
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.warn(ctx, "chatbot.product_lookup_failed", err)
		}
		return nil
	}
	pc := &productContext{
		Name:    product.Name,
		Price:   types.Dollars(product.PriceCents),
		InStock: product.Status == enums.ProductStatusLive,
	}
	if product.Description != nil {
		pc.Description = *product.Description
	}
	return pc
}

func (s *service) notifyEscalation(ctx context.Context, sessionID string, ticket Ticket) {
	if s.notifier == nil {
		return
	}
	priority := ticket.Priority
	if priority == enums.NotificationPriorityLow || priority == enums.NotificationPriorityMedium {
		priority = enums.NotificationPriorityHigh
	}
	if _, err := s.notifier.Create(ctx, notifications.CreateInput{
		Type:     enums.NotificationTypeAlert,
		Title:    "Chat escalated: " + ticket.ID,
		Message:  ticket.Subject,
		Priority: priority,
		Metadata: map[string]any{"session_id": sessionID, "ticket_id": ticket.ID},
	}); err != nil {
		s.warn(ctx, "chatbot.escalation_notify_failed", err)
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.WarnErr(ctx, msg, err)
}

func summarize(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return truncate(b.String(), ticketSummaryLimit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
