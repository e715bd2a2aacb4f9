package enums

import "fmt"

// NarrativeEventType enumerates the closed set of audit-trail events a ledger
// can record. Each type carries its own typed payload (see pkg/types).
type NarrativeEventType string

const (
	NarrativeInvestmentAdded      NarrativeEventType = "investmentAdded"
	NarrativeInvestmentUpdated    NarrativeEventType = "investmentUpdated"
	NarrativeSaleDeclared         NarrativeEventType = "saleDeclared"
	NarrativeGrossProfitComputed  NarrativeEventType = "grossProfitComputed"
	NarrativeAdminCostDeclared    NarrativeEventType = "adminCostDeclared"
	NarrativeNetProfitAllocated   NarrativeEventType = "netProfitAllocated"
	NarrativeProfitDistributed    NarrativeEventType = "profitDistributed"
	NarrativeCommissionCalculated NarrativeEventType = "commissionCalculated"
	NarrativePaymentMade          NarrativeEventType = "paymentMade"
	NarrativeProjectClosed        NarrativeEventType = "projectClosed"
)

var validNarrativeEventTypes = []NarrativeEventType{
	NarrativeInvestmentAdded,
	NarrativeInvestmentUpdated,
	NarrativeSaleDeclared,
	NarrativeGrossProfitComputed,
	NarrativeAdminCostDeclared,
	NarrativeNetProfitAllocated,
	NarrativeProfitDistributed,
	NarrativeCommissionCalculated,
	NarrativePaymentMade,
	NarrativeProjectClosed,
}

// String implements fmt.Stringer.
func (n NarrativeEventType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NarrativeEventType.
func (n NarrativeEventType) IsValid() bool {
	for _, candidate := range validNarrativeEventTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNarrativeEventType converts raw input into a NarrativeEventType.
func ParseNarrativeEventType(value string) (NarrativeEventType, error) {
	for _, candidate := range validNarrativeEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid narrative event type %q", value)
}
