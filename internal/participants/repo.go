package participants

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
)

// Repository manages persistence for participant stakes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, participant *models.Participant) error
	Update(ctx context.Context, participant *models.Participant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	FindByPair(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error)
	FindByPairForUpdate(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error)
	ListByInvestment(ctx context.Context, investmentID uuid.UUID) ([]models.Participant, error)
	ListActive(ctx context.Context) ([]models.Participant, error)
	SumAmounts(ctx context.Context, investmentID uuid.UUID, excludeInvestor *uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a participant repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *repository) Update(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repository) FindByPair(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).
		Where("investor_id = ? AND investment_id = ?", investorID, investmentID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repository) FindByPairForUpdate(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("investor_id = ? AND investment_id = ?", investorID, investmentID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repository) ListByInvestment(ctx context.Context, investmentID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	if err := r.db.WithContext(ctx).
		Where("investment_id = ?", investmentID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Participant, error) {
	var list []models.Participant
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.ParticipantStatusActive).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// SumAmounts totals the contributed capital across an investment's
// participants, optionally excluding one investor. Used for the funding cap
// check, which must run inside the same transaction as the write it guards.
func (r *repository) SumAmounts(ctx context.Context, investmentID uuid.UUID, excludeInvestor *uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	query := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("investment_id = ?", investmentID)
	if excludeInvestor != nil {
		query = query.Where("investor_id <> ?", *excludeInvestor)
	}
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
