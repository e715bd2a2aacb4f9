package ledgers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/money"
)

// SummaryRepository manages the running commission aggregate per
// (agent, investor) pair.
type SummaryRepository interface {
	WithTx(tx *gorm.DB) SummaryRepository
	FindByPair(ctx context.Context, agentID, investorID uuid.UUID) (*models.AgentCommissionSummary, error)
	ApplyDelta(ctx context.Context, agentID, investorID uuid.UUID, dueDelta, paidDelta decimal.Decimal) (*models.AgentCommissionSummary, error)
}

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository returns a commission summary repository bound to the
// provided database.
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) WithTx(tx *gorm.DB) SummaryRepository {
	if tx == nil {
		return r
	}
	return &summaryRepository{db: tx}
}

func (r *summaryRepository) FindByPair(ctx context.Context, agentID, investorID uuid.UUID) (*models.AgentCommissionSummary, error) {
	var summary models.AgentCommissionSummary
	if err := r.db.WithContext(ctx).
		Where("agent_id = ? AND investor_id = ?", agentID, investorID).
		First(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// ApplyDelta moves the pair's aggregates by the provided deltas, creating the
// summary row on first use. The row is locked so concurrent payments against
// different ledgers of the same pair serialize here.
func (r *summaryRepository) ApplyDelta(ctx context.Context, agentID, investorID uuid.UUID, dueDelta, paidDelta decimal.Decimal) (*models.AgentCommissionSummary, error) {
	var summary models.AgentCommissionSummary
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agent_id = ? AND investor_id = ?", agentID, investorID).
		First(&summary).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		summary = models.AgentCommissionSummary{
			AgentID:             agentID,
			InvestorID:          investorID,
			TotalCommissionDue:  decimal.Zero,
			TotalCommissionPaid: decimal.Zero,
		}
		if err := r.db.WithContext(ctx).Create(&summary).Error; err != nil {
			return nil, err
		}
	}

	summary.TotalCommissionDue = money.Round2(summary.TotalCommissionDue.Add(dueDelta))
	summary.TotalCommissionPaid = money.Round2(summary.TotalCommissionPaid.Add(paidDelta))
	if err := r.db.WithContext(ctx).Save(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
