package enums

import "fmt"

// PaymentEntryType classifies immutable payment-log entries.
type PaymentEntryType string

const (
	PaymentEntryInvestment        PaymentEntryType = "investment"
	PaymentEntryProfitPayment     PaymentEntryType = "profitPayment"
	PaymentEntryCommissionPayment PaymentEntryType = "commissionPayment"
	PaymentEntryCloseProject      PaymentEntryType = "closeProject"
)

var validPaymentEntryTypes = []PaymentEntryType{
	PaymentEntryInvestment,
	PaymentEntryProfitPayment,
	PaymentEntryCommissionPayment,
	PaymentEntryCloseProject,
}

// String implements fmt.Stringer.
func (p PaymentEntryType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentEntryType.
func (p PaymentEntryType) IsValid() bool {
	for _, candidate := range validPaymentEntryTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentEntryType converts raw input into a PaymentEntryType.
func ParsePaymentEntryType(value string) (PaymentEntryType, error) {
	for _, candidate := range validPaymentEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment entry type %q", value)
}
