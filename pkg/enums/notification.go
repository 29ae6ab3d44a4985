package enums

import "fmt"

// NotificationType classifies in-app admin notifications.
type NotificationType string

const (
	NotificationTypeOrder       NotificationType = "order"
	NotificationTypeAlert       NotificationType = "alert"
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeInsight     NotificationType = "insight"
	NotificationTypeIntegration NotificationType = "integration"
	NotificationTypeProduct     NotificationType = "product"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypeAlert,
	NotificationTypeSystem,
	NotificationTypeInsight,
	NotificationTypeIntegration,
	NotificationTypeProduct,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationTypes lists the accepted values, in declaration order.
func NotificationTypes() []string {
	out := make([]string, 0, len(validNotificationTypes))
	for _, v := range validNotificationTypes {
		out = append(out, string(v))
	}
	return out
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
