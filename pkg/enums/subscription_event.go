package enums

import "fmt"

// SubscriptionEvent names a subscription lifecycle change published on the bus.
type SubscriptionEvent string

const (
	SubscriptionEventCreated    SubscriptionEvent = "created"
	SubscriptionEventUpgraded   SubscriptionEvent = "upgraded"
	SubscriptionEventDowngraded SubscriptionEvent = "downgraded"
	SubscriptionEventCancelled  SubscriptionEvent = "cancelled"
	SubscriptionEventExpired    SubscriptionEvent = "expired"
	SubscriptionEventResumed    SubscriptionEvent = "resumed"
)

var validSubscriptionEvents = []SubscriptionEvent{
	SubscriptionEventCreated,
	SubscriptionEventUpgraded,
	SubscriptionEventDowngraded,
	SubscriptionEventCancelled,
	SubscriptionEventExpired,
	SubscriptionEventResumed,
}

// String implements fmt.Stringer.
func (s SubscriptionEvent) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SubscriptionEvent) IsValid() bool {
	for _, candidate := range validSubscriptionEvents {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriptionEvent converts raw input into a SubscriptionEvent.
func ParseSubscriptionEvent(value string) (SubscriptionEvent, error) {
	for _, candidate := range validSubscriptionEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription event %q", value)
}
