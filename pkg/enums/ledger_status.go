package enums

import "fmt"

// LedgerStatus is the due/partial/paid state shared by investor and agent
// ledgers and their payment-log entries.
type LedgerStatus string

const (
	LedgerStatusDue     LedgerStatus = "due"
	LedgerStatusPartial LedgerStatus = "partial"
	LedgerStatusPaid    LedgerStatus = "paid"
)

var validLedgerStatuses = []LedgerStatus{
	LedgerStatusDue,
	LedgerStatusPartial,
	LedgerStatusPaid,
}

// String implements fmt.Stringer.
func (s LedgerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LedgerStatus.
func (s LedgerStatus) IsValid() bool {
	for _, candidate := range validLedgerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerStatus converts raw input into a LedgerStatus.
func ParseLedgerStatus(value string) (LedgerStatus, error) {
	for _, candidate := range validLedgerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger status %q", value)
}
