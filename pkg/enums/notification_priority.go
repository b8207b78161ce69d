package enums

import "fmt"

// NotificationPriority orders delivery urgency for user-facing messages.
type NotificationPriority string

const (
	NotificationPriorityImmediate NotificationPriority = "IMMEDIATE"
	NotificationPriorityHigh      NotificationPriority = "HIGH"
	NotificationPriorityLow       NotificationPriority = "LOW"
)

var validNotificationPriorities = []NotificationPriority{
	NotificationPriorityImmediate,
	NotificationPriorityHigh,
	NotificationPriorityLow,
}

// String implements fmt.Stringer.
func (n NotificationPriority) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationPriority.
func (n NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationPriority converts raw input into a NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	for _, candidate := range validNotificationPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}
