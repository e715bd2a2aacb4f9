package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/types"
)

// AgentTransaction is the agent commission ledger for one (investment,
// investor, agent, period) tuple. Structurally parallel to MonthlyTransaction
// but scoped to commission money.
type AgentTransaction struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Period         types.Period       `gorm:"column:period;type:text;not null;uniqueIndex:idx_agent_tx_scope"`
	AgentID        uuid.UUID          `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_agent_tx_scope"`
	InvestmentID   uuid.UUID          `gorm:"column:investment_id;type:uuid;not null;uniqueIndex:idx_agent_tx_scope"`
	InvestorID     uuid.UUID          `gorm:"column:investor_id;type:uuid;not null;uniqueIndex:idx_agent_tx_scope"`
	Profit         decimal.Decimal    `gorm:"column:profit;type:numeric(14,2);not null;default:0"`
	CommissionDue  decimal.Decimal    `gorm:"column:commission_due;type:numeric(14,2);not null;default:0"`
	CommissionPaid decimal.Decimal    `gorm:"column:commission_paid;type:numeric(14,2);not null;default:0"`
	Status         enums.LedgerStatus `gorm:"column:status;type:text;not null;default:'due'"`
	PaymentLog     types.PaymentLog   `gorm:"column:payment_log;type:jsonb;serializer:json"`
	Logs           types.NarrativeLog `gorm:"column:logs;type:jsonb;serializer:json"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// OutstandingDue is the commission still owed on this ledger.
func (a AgentTransaction) OutstandingDue() decimal.Decimal {
	return a.CommissionDue
}
