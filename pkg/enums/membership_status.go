package enums

import "fmt"

// MembershipStatus marks whether a member still counts toward billing.
type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusRemoved MembershipStatus = "removed"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusActive,
	MembershipStatusRemoved,
}

// String implements fmt.Stringer.
func (s MembershipStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMembershipStatus converts raw input into a MembershipStatus.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	for _, candidate := range validMembershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership status %q", value)
}
