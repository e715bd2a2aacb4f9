package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentCommissionSummary is the running commission aggregate for one
// (agent, investor) pair across every investment they share. It is only ever
// moved by applying deltas inside the transaction that moved the underlying
// agent ledger.
type AgentCommissionSummary struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID             uuid.UUID       `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_commission_summary_pair"`
	InvestorID          uuid.UUID       `gorm:"column:investor_id;type:uuid;not null;uniqueIndex:idx_commission_summary_pair"`
	TotalCommissionDue  decimal.Decimal `gorm:"column:total_commission_due;type:numeric(14,2);not null;default:0"`
	TotalCommissionPaid decimal.Decimal `gorm:"column:total_commission_paid;type:numeric(14,2);not null;default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
