package stripe

import (
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// ErrWebhookSecretMissing means deliveries cannot be authenticated yet.
var ErrWebhookSecretMissing = errors.New("stripe webhook secret not configured")

// Verifier authenticates Stripe webhook deliveries. It only needs the signing
// secret, so webhooks keep working while the API key is rotated.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: strings.TrimSpace(secret), tolerance: tolerance}
}

func (v *Verifier) Configured() bool {
	return v != nil && v.secret != ""
}

// Verify checks the Stripe-Signature header and decodes the event. Events
// pinned to a different API version are accepted; only the fields this
// service reads are decoded.
func (v *Verifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if !v.Configured() {
		return stripe.Event{}, ErrWebhookSecretMissing
	}
	return webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
}
