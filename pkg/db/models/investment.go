package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrahq/investra-backend/pkg/enums"
)

// Investment is a funding project. AmountRequired is the capital target the
// funding cap is enforced against; SaleAmount is set once a sale is declared.
type Investment struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string                 `gorm:"column:title;not null"`
	Details        string                 `gorm:"column:details;not null"`
	AmountRequired decimal.Decimal        `gorm:"column:amount_required;type:numeric(14,2);not null"`
	SaleAmount     decimal.NullDecimal    `gorm:"column:sale_amount;type:numeric(14,2)"`
	AdminCostRate  decimal.Decimal        `gorm:"column:admin_cost_rate;type:numeric(5,2);not null;default:0"`
	Status         enums.InvestmentStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
