package ledgers

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/money"
	"github.com/investrahq/investra-backend/pkg/types"
)

// Aggregate reconciliation lives here and only here. Every mutation of a
// ledger's paid total or status goes through these routines so summary and
// detail records cannot drift apart.

// SumPaid folds the paid amounts of a payment log.
func SumPaid(log types.PaymentLog) decimal.Decimal {
	total := lo.Reduce(log, func(acc decimal.Decimal, entry types.PaymentEntry, _ int) decimal.Decimal {
		return acc.Add(entry.PaidAmount)
	}, decimal.Zero)
	return money.Round2(total)
}

// StatusFor derives a ledger status from its outstanding due and paid total.
func StatusFor(outstandingDue, totalPaid decimal.Decimal) enums.LedgerStatus {
	switch {
	case outstandingDue.LessThanOrEqual(decimal.Zero) && totalPaid.GreaterThan(decimal.Zero):
		return enums.LedgerStatusPaid
	case totalPaid.GreaterThan(decimal.Zero):
		return enums.LedgerStatusPartial
	default:
		return enums.LedgerStatusDue
	}
}

// ReconcileMonthly recomputes the record's paid total from its own payment
// log and derives the status. The due figure is owned by the callers that
// accrue or pay it; this routine never invents money.
func ReconcileMonthly(record *models.MonthlyTransaction) {
	record.MonthlyTotalPaid = SumPaid(record.PaymentLog)
	record.MonthlyTotalDue = money.Round2(record.MonthlyTotalDue)
	record.Status = StatusFor(record.MonthlyTotalDue, record.MonthlyTotalPaid)
}

// ReconcileAgent recomputes the commission ledger's paid total and status
// from its own payment log.
func ReconcileAgent(record *models.AgentTransaction) {
	record.CommissionPaid = SumPaid(record.PaymentLog)
	record.CommissionDue = money.Round2(record.CommissionDue)
	record.Status = StatusFor(record.CommissionDue, record.CommissionPaid)
}

// PaidAcross sums paid amounts across the payment logs of every record,
// used by the accrual sweep to self-heal participant aggregates.
func PaidAcross(records []models.MonthlyTransaction) decimal.Decimal {
	total := lo.Reduce(records, func(acc decimal.Decimal, record models.MonthlyTransaction, _ int) decimal.Decimal {
		return acc.Add(SumPaid(record.PaymentLog))
	}, decimal.Zero)
	return money.Round2(total)
}
