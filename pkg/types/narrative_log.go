package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
)

// Narrative payloads form a closed tagged union: each event kind carries
// exactly one typed payload instead of a free-form metadata map.

type InvestmentAddedPayload struct {
	Amount decimal.Decimal `json:"amount"`
}

type InvestmentUpdatedPayload struct {
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	Contribution   decimal.Decimal `json:"contribution"`
	NewTotalDue    decimal.Decimal `json:"new_total_due"`
}

type SaleDeclaredPayload struct {
	SaleAmount decimal.Decimal `json:"sale_amount"`
}

type GrossProfitPayload struct {
	SaleAmount     decimal.Decimal `json:"sale_amount"`
	AmountRequired decimal.Decimal `json:"amount_required"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
}

type AdminCostPayload struct {
	RatePercent decimal.Decimal `json:"rate_percent"`
	AdminCost   decimal.Decimal `json:"admin_cost"`
}

type NetProfitPayload struct {
	NetProfit decimal.Decimal `json:"net_profit"`
}

type ProfitDistributedPayload struct {
	SharePercent decimal.Decimal `json:"share_percent"`
	Amount       decimal.Decimal `json:"amount"`
}

type CommissionCalculatedPayload struct {
	AgentID        uuid.UUID       `json:"agent_id"`
	SharePercent   decimal.Decimal `json:"share_percent"`
	CommissionBase decimal.Decimal `json:"commission_base"`
	RatePercent    decimal.Decimal `json:"rate_percent"`
	Commission     decimal.Decimal `json:"commission"`
}

type PaymentMadePayload struct {
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	RemainingDue decimal.Decimal `json:"remaining_due"`
}

type ProjectClosedPayload struct {
	FinalPaid decimal.Decimal `json:"final_paid"`
}

// NarrativeEntry is one audit-trail line. Exactly one payload pointer matching
// Type must be set; entries are immutable once appended.
type NarrativeEntry struct {
	Type          enums.NarrativeEventType `json:"type"`
	Message       string                   `json:"message"`
	CorrelationID uuid.UUID                `json:"correlation_id,omitempty"`
	At            time.Time                `json:"at"`

	InvestmentAdded      *InvestmentAddedPayload      `json:"investment_added,omitempty"`
	InvestmentUpdated    *InvestmentUpdatedPayload    `json:"investment_updated,omitempty"`
	SaleDeclared         *SaleDeclaredPayload         `json:"sale_declared,omitempty"`
	GrossProfit          *GrossProfitPayload          `json:"gross_profit,omitempty"`
	AdminCost            *AdminCostPayload            `json:"admin_cost,omitempty"`
	NetProfit            *NetProfitPayload            `json:"net_profit,omitempty"`
	ProfitDistributed    *ProfitDistributedPayload    `json:"profit_distributed,omitempty"`
	CommissionCalculated *CommissionCalculatedPayload `json:"commission_calculated,omitempty"`
	PaymentMade          *PaymentMadePayload          `json:"payment_made,omitempty"`
	ProjectClosed        *ProjectClosedPayload        `json:"project_closed,omitempty"`
}

// Validate checks the type is known and exactly the matching payload is set.
func (e NarrativeEntry) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid narrative event type %q", e.Type)
	}
	if e.Message == "" {
		return fmt.Errorf("narrative entry requires a message")
	}
	set := 0
	for kind, present := range e.payloads() {
		if !present {
			continue
		}
		set++
		if kind != e.Type {
			return fmt.Errorf("narrative entry carries %q payload but has type %q", kind, e.Type)
		}
	}
	if set != 1 {
		return fmt.Errorf("narrative entry of type %q must carry exactly one payload, has %d", e.Type, set)
	}
	return nil
}

func (e NarrativeEntry) payloads() map[enums.NarrativeEventType]bool {
	return map[enums.NarrativeEventType]bool{
		enums.NarrativeInvestmentAdded:      e.InvestmentAdded != nil,
		enums.NarrativeInvestmentUpdated:    e.InvestmentUpdated != nil,
		enums.NarrativeSaleDeclared:         e.SaleDeclared != nil,
		enums.NarrativeGrossProfitComputed:  e.GrossProfit != nil,
		enums.NarrativeAdminCostDeclared:    e.AdminCost != nil,
		enums.NarrativeNetProfitAllocated:   e.NetProfit != nil,
		enums.NarrativeProfitDistributed:    e.ProfitDistributed != nil,
		enums.NarrativeCommissionCalculated: e.CommissionCalculated != nil,
		enums.NarrativePaymentMade:          e.PaymentMade != nil,
		enums.NarrativeProjectClosed:        e.ProjectClosed != nil,
	}
}

// NarrativeLog is the append-only audit trail of a ledger, persisted as JSONB.
type NarrativeLog []NarrativeEntry
