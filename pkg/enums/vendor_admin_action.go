package enums

import "fmt"

// VendorAdminAction is the set of review decisions an admin may apply.
type VendorAdminAction string

const (
	VendorAdminActionApprove   VendorAdminAction = "approve"
	VendorAdminActionReject    VendorAdminAction = "reject"
	VendorAdminActionSuspend   VendorAdminAction = "suspend"
	VendorAdminActionUnsuspend VendorAdminAction = "unsuspend"
)

var validVendorAdminActions = []VendorAdminAction{
	VendorAdminActionApprove,
	VendorAdminActionReject,
	VendorAdminActionSuspend,
	VendorAdminActionUnsuspend,
}

// String implements fmt.Stringer.
func (v VendorAdminAction) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorAdminAction.
func (v VendorAdminAction) IsValid() bool {
	for _, candidate := range validVendorAdminActions {
		if candidate == v {
			return true
		}
	}
	return false
}

// TargetStatus maps the action to the vendor status it drives toward.
func (v VendorAdminAction) TargetStatus() VendorStatus {
	switch v {
	case VendorAdminActionApprove, VendorAdminActionUnsuspend:
		return VendorStatusApproved
	case VendorAdminActionReject:
		return VendorStatusRejected
	case VendorAdminActionSuspend:
		return VendorStatusSuspended
	default:
		return ""
	}
}

// ParseVendorAdminAction converts raw input into a VendorAdminAction.
func ParseVendorAdminAction(value string) (VendorAdminAction, error) {
	for _, candidate := range validVendorAdminActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor admin action %q", value)
}
