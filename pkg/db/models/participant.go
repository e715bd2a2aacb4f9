package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
)

// Participant is one investor's stake within one investment. Amount is the
// capital basis profit shares are computed from; TotalDue/TotalPaid are
// aggregates maintained incrementally and reconciled against the investor's
// monthly ledgers.
type Participant struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvestorID          uuid.UUID               `gorm:"column:investor_id;type:uuid;not null;uniqueIndex:idx_participant_investor_investment"`
	InvestmentID        uuid.UUID               `gorm:"column:investment_id;type:uuid;not null;uniqueIndex:idx_participant_investor_investment"`
	Amount              decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	TotalDue            decimal.Decimal         `gorm:"column:total_due;type:numeric(14,2);not null;default:0"`
	TotalPaid           decimal.Decimal         `gorm:"column:total_paid;type:numeric(14,2);not null;default:0"`
	MonthlyRate         decimal.Decimal         `gorm:"column:monthly_rate;type:numeric(5,2);not null;default:0"`
	AgentCommissionRate decimal.Decimal         `gorm:"column:agent_commission_rate;type:numeric(5,2);not null;default:0"`
	Status              enums.ParticipantStatus `gorm:"column:status;type:text;not null;default:'active'"`
	AmountUpdatedAt     *time.Time              `gorm:"column:amount_updated_at"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
