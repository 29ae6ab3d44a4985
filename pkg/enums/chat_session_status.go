package enums

import "fmt"

// ChatSessionStatus tracks support escalation for a chat session.
type ChatSessionStatus string

const (
	ChatSessionStatusActive            ChatSessionStatus = "active"
	ChatSessionStatusPendingEscalation ChatSessionStatus = "pending_escalation"
	ChatSessionStatusEscalated         ChatSessionStatus = "escalated"
	ChatSessionStatusResolved          ChatSessionStatus = "resolved"
)

var validChatSessionStatuses = []ChatSessionStatus{
	ChatSessionStatusActive,
	ChatSessionStatusPendingEscalation,
	ChatSessionStatusEscalated,
	ChatSessionStatusResolved,
}

// String implements fmt.Stringer.
func (c ChatSessionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChatSessionStatus.
func (c ChatSessionStatus) IsValid() bool {
	for _, candidate := range validChatSessionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ChatSessionStatuses lists the accepted values, in declaration order.
func ChatSessionStatuses() []string {
	out := make([]string, 0, len(validChatSessionStatuses))
	for _, v := range validChatSessionStatuses {
		out = append(out, string(v))
	}
	return out
}

// ParseChatSessionStatus converts raw input into a ChatSessionStatus.
func ParseChatSessionStatus(value string) (ChatSessionStatus, error) {
	for _, candidate := range validChatSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid chat session status %q", value)
}
