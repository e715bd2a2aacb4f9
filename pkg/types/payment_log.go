package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
)

// PaymentEntry is one immutable line in a ledger's payment log. DueAmount is
// the outstanding due at the moment the entry was written.
type PaymentEntry struct {
	Type       enums.PaymentEntryType `json:"type"`
	DueAmount  decimal.Decimal        `json:"due_amount"`
	PaidAmount decimal.Decimal        `json:"paid_amount"`
	Status     enums.LedgerStatus     `json:"status"`
	Note       string                 `json:"note,omitempty"`
	At         time.Time              `json:"at"`
}

// PaymentLog is the append-only payment history of a ledger, persisted as
// JSONB. Entries are never rewritten once appended.
type PaymentLog []PaymentEntry

// TotalPaid sums the paid amounts across all entries.
func (l PaymentLog) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range l {
		total = total.Add(entry.PaidAmount)
	}
	return total.Round(2)
}
