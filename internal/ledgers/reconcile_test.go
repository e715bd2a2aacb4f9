package ledgers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/types"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSumPaidFoldsLog(t *testing.T) {
	log := types.PaymentLog{
		{Type: enums.PaymentEntryInvestment, DueAmount: dec("100"), PaidAmount: decimal.Zero, At: time.Now()},
		{Type: enums.PaymentEntryProfitPayment, DueAmount: dec("100"), PaidAmount: dec("40.005"), At: time.Now()},
		{Type: enums.PaymentEntryProfitPayment, DueAmount: dec("60"), PaidAmount: dec("10"), At: time.Now()},
	}
	if got := SumPaid(log); !got.Equal(dec("50.01")) {
		t.Fatalf("expected 50.01, got %s", got)
	}
	if got := SumPaid(nil); !got.IsZero() {
		t.Fatalf("expected zero for empty log, got %s", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		due  decimal.Decimal
		paid decimal.Decimal
		want enums.LedgerStatus
	}{
		{"untouched", dec("100"), decimal.Zero, enums.LedgerStatusDue},
		{"partially paid", dec("60"), dec("40"), enums.LedgerStatusPartial},
		{"fully paid", decimal.Zero, dec("100"), enums.LedgerStatusPaid},
		{"nothing due nothing paid", decimal.Zero, decimal.Zero, enums.LedgerStatusDue},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.due, tc.paid); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestReconcileMonthlyDerivesPaidFromLog(t *testing.T) {
	record := &models.MonthlyTransaction{
		MonthlyTotalDue:  dec("60"),
		MonthlyTotalPaid: dec("999"),
		PaymentLog: types.PaymentLog{
			{Type: enums.PaymentEntryProfitPayment, DueAmount: dec("100"), PaidAmount: dec("40"), At: time.Now()},
		},
	}
	ReconcileMonthly(record)
	if !record.MonthlyTotalPaid.Equal(dec("40")) {
		t.Fatalf("expected paid recomputed to 40, got %s", record.MonthlyTotalPaid)
	}
	if record.Status != enums.LedgerStatusPartial {
		t.Fatalf("expected partial status, got %s", record.Status)
	}
}

func TestReconcileAgentFullyPaid(t *testing.T) {
	record := &models.AgentTransaction{
		CommissionDue: decimal.Zero,
		PaymentLog: types.PaymentLog{
			{Type: enums.PaymentEntryCommissionPayment, DueAmount: dec("60"), PaidAmount: dec("60"), At: time.Now()},
		},
	}
	ReconcileAgent(record)
	if record.Status != enums.LedgerStatusPaid {
		t.Fatalf("expected paid status, got %s", record.Status)
	}
	if !record.CommissionPaid.Equal(dec("60")) {
		t.Fatalf("expected paid 60, got %s", record.CommissionPaid)
	}
}

func TestPaidAcrossRecords(t *testing.T) {
	records := []models.MonthlyTransaction{
		{PaymentLog: types.PaymentLog{{PaidAmount: dec("25")}}},
		{PaymentLog: types.PaymentLog{{PaidAmount: dec("10")}, {PaidAmount: dec("5")}}},
		{},
	}
	if got := PaidAcross(records); !got.Equal(dec("40")) {
		t.Fatalf("expected 40, got %s", got)
	}
}
