package enums

import "fmt"

// VendorStatus tracks where a vendor profile sits in the onboarding flow.
type VendorStatus string

const (
	VendorStatusRegistered       VendorStatus = "registered"
	VendorStatusPlanSelected     VendorStatus = "plan_selected"
	VendorStatusProfileCompleted VendorStatus = "profile_completed"
	VendorStatusPendingApproval  VendorStatus = "pending_approval"
	VendorStatusApproved         VendorStatus = "approved"
	VendorStatusRejected         VendorStatus = "rejected"
	VendorStatusSuspended        VendorStatus = "suspended"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusRegistered,
	VendorStatusPlanSelected,
	VendorStatusProfileCompleted,
	VendorStatusPendingApproval,
	VendorStatusApproved,
	VendorStatusRejected,
	VendorStatusSuspended,
}

// vendorTransitions is the directed edge set of the onboarding workflow.
// Rejected profiles re-enter at profile_completed once the vendor edits
// their profile again; suspension is reversible only by a new admin action.
var vendorTransitions = map[VendorStatus][]VendorStatus{
	VendorStatusRegistered:       {VendorStatusPlanSelected},
	VendorStatusPlanSelected:     {VendorStatusProfileCompleted},
	VendorStatusProfileCompleted: {VendorStatusPendingApproval},
	VendorStatusPendingApproval:  {VendorStatusApproved, VendorStatusRejected},
	VendorStatusApproved:         {VendorStatusSuspended},
	VendorStatusRejected:         {VendorStatusProfileCompleted},
	VendorStatusSuspended:        {VendorStatusApproved},
}

// String implements fmt.Stringer.
func (v VendorStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorStatus.
func (v VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the edge v -> next exists in the workflow.
func (v VendorStatus) CanTransitionTo(next VendorStatus) bool {
	for _, candidate := range vendorTransitions[v] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseVendorStatus converts raw input into a VendorStatus.
func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}
