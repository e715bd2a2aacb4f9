package enums

import "fmt"

// InvestmentStatus tracks the lifecycle of a funding project. Investments are
// never deleted, only blocked.
type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusBlocked InvestmentStatus = "block"
)

var validInvestmentStatuses = []InvestmentStatus{
	InvestmentStatusActive,
	InvestmentStatusBlocked,
}

// String implements fmt.Stringer.
func (s InvestmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InvestmentStatus.
func (s InvestmentStatus) IsValid() bool {
	for _, candidate := range validInvestmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvestmentStatus converts raw input into an InvestmentStatus.
func ParseInvestmentStatus(value string) (InvestmentStatus, error) {
	for _, candidate := range validInvestmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid investment status %q", value)
}
