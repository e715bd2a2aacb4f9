package ledgers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/types"
)

// AgentRepository manages persistence for agent commission ledger records.
type AgentRepository interface {
	WithTx(tx *gorm.DB) AgentRepository
	Create(ctx context.Context, record *models.AgentTransaction) error
	Update(ctx context.Context, record *models.AgentTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AgentTransaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AgentTransaction, error)
	FindByScope(ctx context.Context, period types.Period, agentID, investmentID, investorID uuid.UUID) (*models.AgentTransaction, error)
}

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository returns an agent ledger repository bound to the provided
// database.
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) WithTx(tx *gorm.DB) AgentRepository {
	if tx == nil {
		return r
	}
	return &agentRepository{db: tx}
}

func (r *agentRepository) Create(ctx context.Context, record *models.AgentTransaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *agentRepository) Update(ctx context.Context, record *models.AgentTransaction) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *agentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AgentTransaction, error) {
	var record models.AgentTransaction
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *agentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.AgentTransaction, error) {
	var record models.AgentTransaction
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *agentRepository) FindByScope(ctx context.Context, period types.Period, agentID, investmentID, investorID uuid.UUID) (*models.AgentTransaction, error) {
	var record models.AgentTransaction
	if err := r.db.WithContext(ctx).
		Where("period = ? AND agent_id = ? AND investment_id = ? AND investor_id = ?",
			period, agentID, investmentID, investorID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
