package webhooks

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/angelmondragon/urgency-engine/api/responses"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

const maxWebhookBodyBytes = 1 << 20

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

// StripeWebhookGuard deduplicates deliveries by Stripe event id.
type StripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
	FirstSeen(ctx context.Context, eventID string) (time.Time, bool, error)
}

// EventVerifier authenticates a delivery and decodes the event.
type EventVerifier interface {
	Configured() bool
	Verify(payload []byte, signature string) (stripe.Event, error)
}

type receipt struct {
	Status string `json:"status"`
}

var received = receipt{Status: "received"}

// StripeWebhook verifies and applies Stripe checkout events. Deliveries are
// refused until a signing secret is configured.
func StripeWebhook(svc StripeWebhookService, verifier EventVerifier, guard StripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}
		if verifier == nil || !verifier.Configured() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "stripe webhook secret not configured"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := verifier.Verify(payload, sigHeader)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			logDuplicate(ctx, logg, guard, event)
			responses.WriteSuccess(w, received)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, event.ID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logCtx := logg.WithFields(ctx, map[string]any{"stripe_event_id": event.ID, "stripe_event_type": string(event.Type)})
			logg.Info(logCtx, "stripe.webhook.processed")
		}
		responses.WriteSuccess(w, received)
	}
}

func logDuplicate(ctx context.Context, logg *logger.Logger, guard StripeWebhookGuard, event stripe.Event) {
	if logg == nil {
		return
	}
	fields := map[string]any{"stripe_event_id": event.ID, "stripe_event_type": string(event.Type)}
	seen, ok, err := guard.FirstSeen(ctx, event.ID)
	switch {
	case err != nil:
		logg.WarnErr(logg.WithFields(ctx, fields), "stripe.webhook.first_seen_lookup_failed", err)
		return
	case ok && !seen.IsZero():
		fields["first_seen"] = seen.Format(time.RFC3339)
	}
	logg.Info(logg.WithFields(ctx, fields), "stripe.webhook.duplicate")
}
