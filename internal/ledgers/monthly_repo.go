package ledgers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/types"
)

// MonthlyRepository manages persistence for investor ledger records.
type MonthlyRepository interface {
	WithTx(tx *gorm.DB) MonthlyRepository
	Create(ctx context.Context, record *models.MonthlyTransaction) error
	Update(ctx context.Context, record *models.MonthlyTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error)
	FindByScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (*models.MonthlyTransaction, error)
	ExistsForScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (bool, error)
	ListByParticipant(ctx context.Context, investmentID, investorID uuid.UUID) ([]models.MonthlyTransaction, error)
}

type monthlyRepository struct {
	db *gorm.DB
}

// NewMonthlyRepository returns a monthly ledger repository bound to the
// provided database.
func NewMonthlyRepository(db *gorm.DB) MonthlyRepository {
	return &monthlyRepository{db: db}
}

func (r *monthlyRepository) WithTx(tx *gorm.DB) MonthlyRepository {
	if tx == nil {
		return r
	}
	return &monthlyRepository{db: tx}
}

func (r *monthlyRepository) Create(ctx context.Context, record *models.MonthlyTransaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *monthlyRepository) Update(ctx context.Context, record *models.MonthlyTransaction) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *monthlyRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error) {
	var record models.MonthlyTransaction
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *monthlyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error) {
	var record models.MonthlyTransaction
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *monthlyRepository) FindByScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (*models.MonthlyTransaction, error) {
	var record models.MonthlyTransaction
	query := r.db.WithContext(ctx).
		Where("period = ? AND investment_id = ?", period, investmentID)
	if investorID == nil {
		query = query.Where("investor_id IS NULL")
	} else {
		query = query.Where("investor_id = ?", *investorID)
	}
	if err := query.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *monthlyRepository) ExistsForScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.MonthlyTransaction{}).
		Where("period = ? AND investment_id = ?", period, investmentID)
	if investorID == nil {
		query = query.Where("investor_id IS NULL")
	} else {
		query = query.Where("investor_id = ?", *investorID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *monthlyRepository) ListByParticipant(ctx context.Context, investmentID, investorID uuid.UUID) ([]models.MonthlyTransaction, error) {
	var records []models.MonthlyTransaction
	if err := r.db.WithContext(ctx).
		Where("investment_id = ? AND investor_id = ?", investmentID, investorID).
		Order("period ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
