package enums

import "fmt"

// ParticipantStatus tracks one investor's stake within one investment.
type ParticipantStatus string

const (
	ParticipantStatusActive  ParticipantStatus = "active"
	ParticipantStatusBlocked ParticipantStatus = "blocked"
)

var validParticipantStatuses = []ParticipantStatus{
	ParticipantStatusActive,
	ParticipantStatusBlocked,
}

// String implements fmt.Stringer.
func (s ParticipantStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ParticipantStatus.
func (s ParticipantStatus) IsValid() bool {
	for _, candidate := range validParticipantStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseParticipantStatus converts raw input into a ParticipantStatus.
func ParseParticipantStatus(value string) (ParticipantStatus, error) {
	for _, candidate := range validParticipantStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid participant status %q", value)
}
