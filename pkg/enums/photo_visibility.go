package enums

import "fmt"

// PhotoVisibility controls who may view a profile photo.
type PhotoVisibility string

const (
	PhotoVisibilityPublic      PhotoVisibility = "public"
	PhotoVisibilityConnections PhotoVisibility = "connections"
	PhotoVisibilityRequest     PhotoVisibility = "request"
)

var validPhotoVisibilities = []PhotoVisibility{
	PhotoVisibilityPublic,
	PhotoVisibilityConnections,
	PhotoVisibilityRequest,
}

// String implements fmt.Stringer.
func (p PhotoVisibility) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PhotoVisibility.
func (p PhotoVisibility) IsValid() bool {
	for _, candidate := range validPhotoVisibilities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePhotoVisibility converts raw input into a PhotoVisibility.
func ParsePhotoVisibility(value string) (PhotoVisibility, error) {
	for _, candidate := range validPhotoVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo visibility %q", value)
}
