package enums

import "fmt"

// AccessRequestStatus tracks a viewer's request to see a restricted photo.
type AccessRequestStatus string

const (
	AccessRequestStatusPending AccessRequestStatus = "pending"
	AccessRequestStatusGranted AccessRequestStatus = "granted"
	AccessRequestStatusDenied  AccessRequestStatus = "denied"
)

var validAccessRequestStatuses = []AccessRequestStatus{
	AccessRequestStatusPending,
	AccessRequestStatusGranted,
	AccessRequestStatusDenied,
}

// String implements fmt.Stringer.
func (a AccessRequestStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccessRequestStatus.
func (a AccessRequestStatus) IsValid() bool {
	for _, candidate := range validAccessRequestStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccessRequestStatus converts raw input into an AccessRequestStatus.
func ParseAccessRequestStatus(value string) (AccessRequestStatus, error) {
	for _, candidate := range validAccessRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid access request status %q", value)
}
