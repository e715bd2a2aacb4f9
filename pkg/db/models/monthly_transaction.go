package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/types"
)

// MonthlyTransaction is the investor ledger for one (investment, investor,
// period) triple. A nil InvestorID marks the investment-wide record that
// carries sale announcements for the period.
type MonthlyTransaction struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Period           types.Period        `gorm:"column:period;type:text;not null;uniqueIndex:idx_monthly_tx_scope"`
	InvestmentID     uuid.UUID           `gorm:"column:investment_id;type:uuid;not null;uniqueIndex:idx_monthly_tx_scope"`
	InvestorID       *uuid.UUID          `gorm:"column:investor_id;type:uuid;uniqueIndex:idx_monthly_tx_scope"`
	Profit           decimal.Decimal     `gorm:"column:profit;type:numeric(14,2);not null;default:0"`
	MonthlyTotalDue  decimal.Decimal     `gorm:"column:monthly_total_due;type:numeric(14,2);not null;default:0"`
	MonthlyTotalPaid decimal.Decimal     `gorm:"column:monthly_total_paid;type:numeric(14,2);not null;default:0"`
	Status           enums.LedgerStatus  `gorm:"column:status;type:text;not null;default:'due'"`
	PaymentLog       types.PaymentLog    `gorm:"column:payment_log;type:jsonb;serializer:json"`
	Logs             types.NarrativeLog  `gorm:"column:logs;type:jsonb;serializer:json"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OutstandingDue is the amount still owed on this ledger.
func (m MonthlyTransaction) OutstandingDue() decimal.Decimal {
	return m.MonthlyTotalDue
}
