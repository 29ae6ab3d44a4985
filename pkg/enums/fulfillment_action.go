package enums

import "fmt"

// FulfillmentAction is the outcome of evaluating fulfillment rules for an order.
type FulfillmentAction string

const (
	FulfillmentActionAutoFulfill   FulfillmentAction = "auto_fulfill"
	FulfillmentActionHoldForReview FulfillmentAction = "hold_for_review"
	FulfillmentActionProcess       FulfillmentAction = "process"
	FulfillmentActionCancel        FulfillmentAction = "cancel"
)

var validFulfillmentActions = []FulfillmentAction{
	FulfillmentActionAutoFulfill,
	FulfillmentActionHoldForReview,
	FulfillmentActionProcess,
	FulfillmentActionCancel,
}

// String implements fmt.Stringer.
func (f FulfillmentAction) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentAction.
func (f FulfillmentAction) IsValid() bool {
	for _, candidate := range validFulfillmentActions {
		if candidate == f {
			return true
		}
	}
	return false
}

// FulfillmentActions lists the accepted values, in declaration order.
func FulfillmentActions() []string {
	out := make([]string, 0, len(validFulfillmentActions))
	for _, v := range validFulfillmentActions {
		out = append(out, string(v))
	}
	return out
}

// ParseFulfillmentAction converts raw input into a FulfillmentAction.
func ParseFulfillmentAction(value string) (FulfillmentAction, error) {
	for _, candidate := range validFulfillmentActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment action %q", value)
}
