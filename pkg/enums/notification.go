package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeVendorApproved     NotificationType = "vendor_approved"
	NotificationTypeVendorRejected     NotificationType = "vendor_rejected"
	NotificationTypeVendorSuspended    NotificationType = "vendor_suspended"
	NotificationTypeSubscriptionUpdate NotificationType = "subscription_update"
	NotificationTypeBookingUpdate      NotificationType = "booking_update"
	NotificationTypePhotoAccess        NotificationType = "photo_access"
	NotificationTypeReportUpdate       NotificationType = "report_update"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeVendorApproved,
	NotificationTypeVendorRejected,
	NotificationTypeVendorSuspended,
	NotificationTypeSubscriptionUpdate,
	NotificationTypeBookingUpdate,
	NotificationTypePhotoAccess,
	NotificationTypeReportUpdate,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
