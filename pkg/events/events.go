package events

import (
	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/enums"
)

// Notify asks the notification dispatcher to persist and fan out an
// in-app notification for a user.
type Notify struct {
	UserID   uuid.UUID
	Type     enums.NotificationType
	Priority enums.NotificationPriority
	Title    string
	Message  string
	Link     *string
}

// SubscriptionUpdate announces a subscription lifecycle change for a vendor
// profile so downstream consumers can react to entitlement changes.
type SubscriptionUpdate struct {
	VendorProfileID uuid.UUID
	Event           enums.SubscriptionEvent
	PlanCode        string
}

// VendorStatusChanged announces an onboarding state transition.
type VendorStatusChanged struct {
	VendorProfileID uuid.UUID
	UserID          uuid.UUID
	From            enums.VendorStatus
	To              enums.VendorStatus
	Reason          *string
}
