package orders

import (
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
)

// transitions is the allow-list of status moves. Statuses without an entry are terminal.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusPaid,
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelled,
		enums.OrderStatusAbandoned,
	},
	enums.OrderStatusPaid: {
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusFulfilled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusFulfilled: {
		enums.OrderStatusRefunded,
	},
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from enums.OrderStatus) []enums.OrderStatus {
	next := transitions[from]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is allowed. Staying put is always allowed.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further moves exist from the status.
func IsTerminal(status enums.OrderStatus) bool {
	return len(transitions[status]) == 0
}

// ValidateTransition returns a STATE_CONFLICT error listing the allowed targets when the move is not allowed.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "Invalid status '%s'", to).
			WithDetails(map[string]any{"valid_statuses": enums.OrderStatuses()})
	}
	if CanTransition(from, to) {
		return nil
	}
	allowed := make([]string, 0, len(transitions[from]))
	for _, s := range transitions[from] {
		allowed = append(allowed, s.String())
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "Cannot move order from '%s' to '%s'", from, to).
		WithDetails(map[string]any{"current_status": from.String(), "allowed_statuses": allowed})
}
