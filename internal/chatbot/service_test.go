package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOrders map[int64]models.Order

func (f fakeOrders) FindByID(_ context.Context, id int64) (*models.Order, error) {
	order, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &order, nil
}

type fakeCompleter struct {
	reply string
	err   error
	last  ai.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.reply}, nil
}

type captureNotifier struct {
	inputs []notifications.CreateInput
}

func (c *captureNotifier) Create(_ context.Context, input notifications.CreateInput) (*notifications.Notification, error) {
	c.inputs = append(c.inputs, input)
	return &notifications.Notification{ID: "n1"}, nil
}

func newTestService(t *testing.T, params ServiceParams) *service {
	t.Helper()
	if params.Store == nil {
		params.Store = kvstore.NewMemory()
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	impl := svc.(*service)
	clock := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	impl.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return impl
}

func strPtr(v string) *string { return &v }

func TestDetectIntent(t *testing.T) {
	cases := map[string]string{
		"Where is my order?":         IntentOrderStatus,
		"I want a refund":            IntentReturnRefund,
		"Is this lamp in stock":      IntentProductInquiry,
		"How long does it take":      IntentShippingInfo,
		"Please cancel":              IntentCancellation,
		"My card got a weird charge": IntentPaymentIssue,
		"Can I talk to a human":      IntentEscalationRequest,
		"hello":                      IntentGreeting,
		"thanks!":                    IntentClosing,
		"blue":                       IntentGeneral,
	}
	for msg, want := range cases {
		assert.Equal(t, want, DetectIntent(msg), msg)
	}
	assert.Equal(t, []string{"Talk to agent"}, SuggestedActions("unknown"))
}

func TestSendMessageCreatesSessionWithFallbackReply(t *testing.T) {
	svc := newTestService(t, ServiceParams{})
	ctx := context.Background()

	reply, err := svc.SendMessage(ctx, SendInput{Message: "hello", CustomerEmail: strPtr("a@b.co")})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, IntentGreeting, reply.Intent)
	assert.Equal(t, fallbackReplies[IntentGreeting], reply.Response)
	assert.Equal(t, 0.75, reply.Confidence)
	assert.False(t, reply.NeedsHuman)

	history, err := svc.History(ctx, reply.SessionID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, RoleUser, history.Messages[0].Role)
	assert.Equal(t, RoleAssistant, history.Messages[1].Role)
	assert.Equal(t, IntentGreeting, history.Messages[1].Metadata["intent"])
	assert.Equal(t, "a@b.co", *history.CustomerEmail)
	assert.Equal(t, enums.ChatSessionStatusActive, history.Status)

	again, err := svc.SendMessage(ctx, SendInput{Message: "thanks", SessionID: &reply.SessionID})
	require.NoError(t, err)
	assert.Equal(t, reply.SessionID, again.SessionID)
	history, err = svc.History(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 4)
}

func TestSendMessageUsesOrderContext(t *testing.T) {
	tracking := "1Z999"
	svc := newTestService(t, ServiceParams{Orders: fakeOrders{
		7:  {ID: 7, Status: enums.OrderStatusShipped, AmountCents: 2999, TrackingNumber: &tracking},
		42: {ID: 42, Status: enums.OrderStatusDelivered, AmountCents: 15000},
	}})
	ctx := context.Background()

	reply, err := svc.SendMessage(ctx, SendInput{Message: "Where is my order?", OrderID: strPtr("7")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Response, "I found your order #7!"))
	assert.Contains(t, reply.Response, "Total: $29.99")
	assert.Contains(t, reply.Response, "Tracking: 1Z999")

	refund, err := svc.SendMessage(ctx, SendInput{Message: "I want a refund", OrderID: strPtr("42")})
	require.NoError(t, err)
	assert.True(t, refund.NeedsHuman)
	history, err := svc.History(ctx, refund.SessionID)
	require.NoError(t, err)
	assert.Equal(t, enums.ChatSessionStatusPendingEscalation, history.Status)

	missing, err := svc.SendMessage(ctx, SendInput{Message: "Where is my order?", OrderID: strPtr("nope")})
	require.NoError(t, err)
	assert.Equal(t, fallbackReplies[IntentOrderStatus], missing.Response)
}

func TestSendMessageRemoteReply(t *testing.T) {
	completer := &fakeCompleter{reply: "Your order is on its way."}
	svc := newTestService(t, ServiceParams{Policy: ai.NewPolicy(completer, nil)})
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, SendInput{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Your order is on its way.", first.Response)
	assert.Equal(t, 0.95, first.Confidence)
	assert.Equal(t, systemPrompt, completer.last.System)

	_, err = svc.SendMessage(ctx, SendInput{Message: "more", SessionID: &first.SessionID})
	require.NoError(t, err)
	require.Len(t, completer.last.Messages, 3)
	assert.Contains(t, completer.last.Messages[2].Content, "Customer Message: more")

	completer.err = errors.New("overloaded")
	fallback, err := svc.SendMessage(ctx, SendInput{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, fallbackReplies[IntentGreeting], fallback.Response)
	assert.Equal(t, 0.75, fallback.Confidence)
}

func TestEscalateAndResolve(t *testing.T) {
	notifier := &captureNotifier{}
	svc := newTestService(t, ServiceParams{Notifier: notifier})
	ctx := context.Background()

	_, err := svc.Escalate(ctx, "missing", EscalateInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Contains(t, err.Error(), "Session not found")

	reply, err := svc.SendMessage(ctx, SendInput{Message: "Can I talk to a human"})
	require.NoError(t, err)
	assert.True(t, reply.NeedsHuman)

	esc, err := svc.Escalate(ctx, reply.SessionID, EscalateInput{Reason: strPtr("Damaged item"), CustomerEmail: strPtr("c@d.co")})
	require.NoError(t, err)
	assert.Regexp(t, `^TKT-\d{14}$`, esc.TicketID)
	assert.Equal(t, "c@d.co", esc.Ticket.CustomerEmail)
	assert.Contains(t, esc.Ticket.ConversationSummary, "USER: Can I talk to a human")
	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, enums.NotificationPriorityHigh, notifier.inputs[0].Priority)

	history, err := svc.History(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, enums.ChatSessionStatusEscalated, history.Status)
	last := history.Messages[len(history.Messages)-1]
	assert.Equal(t, RoleSystem, last.Role)
	assert.Contains(t, last.Content, esc.TicketID)

	_, err = svc.Escalate(ctx, reply.SessionID, EscalateInput{Priority: strPtr("whenever")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	res, err := svc.Resolve(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Session marked as resolved", res.Message)
}

func TestListSessionsAndStats(t *testing.T) {
	store := kvstore.NewMemory()
	svc := newTestService(t, ServiceParams{Store: store})
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, SendInput{Message: "hello"})
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, SendInput{Message: strings.Repeat("x", 150)})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, first.SessionID)
	require.NoError(t, err)

	list, err := svc.ListSessions(ctx, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, first.SessionID, list.Sessions[0].ID)
	assert.Equal(t, second.SessionID, list.Sessions[1].ID)
	require.NotNil(t, list.Sessions[1].LastMessage)
	assert.LessOrEqual(t, len(*list.Sessions[1].LastMessage), 100)

	resolved := enums.ChatSessionStatusResolved
	filtered, err := svc.ListSessions(ctx, &resolved, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Total)

	bogus := enums.ChatSessionStatus("archived")
	_, err = svc.ListSessions(ctx, &bogus, 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalSessions: 2, Active: 1, Resolved: 1, ResolutionRate: 50}, *stats)

	require.NoError(t, store.Del(ctx, sessionKey(second.SessionID)))
	list, err = svc.ListSessions(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	ids, err := store.SMembers(ctx, sessionIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{first.SessionID}, ids)
}

func TestFAQAndAgentMessage(t *testing.T) {
	svc := newTestService(t, ServiceParams{})
	ctx := context.Background()

	assert.Len(t, svc.FAQTopics(), 8)
	answer, err := svc.FAQ("return_policy")
	require.NoError(t, err)
	assert.Contains(t, answer.Response, "30 days")
	_, err = svc.FAQ("warranty")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	reply, err := svc.SendMessage(ctx, SendInput{Message: "hello"})
	require.NoError(t, err)
	res, err := svc.AgentMessage(ctx, reply.SessionID, AgentInput{Message: "Hi, this is Sam."})
	require.NoError(t, err)
	assert.True(t, res.Success)

	history, err := svc.History(ctx, reply.SessionID)
	require.NoError(t, err)
	last := history.Messages[len(history.Messages)-1]
	assert.Equal(t, true, last.Metadata["from_agent"])
	assert.Equal(t, "Support Agent", last.Metadata["agent_name"])

	_, err = svc.AgentMessage(ctx, "missing", AgentInput{Message: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
