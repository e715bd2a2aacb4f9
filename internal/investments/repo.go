package investments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/investrahq/investra-backend/pkg/db/models"
)

// Repository manages persistence for investments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, investment *models.Investment) error
	Update(ctx context.Context, investment *models.Investment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	List(ctx context.Context) ([]models.Investment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an investment repository bound to the provided
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

func (r *repository) Create(ctx context.Context, investment *models.Investment) error {
	return r.db.WithContext(ctx).Create(investment).Error
}

func (r *repository) Update(ctx context.Context, investment *models.Investment) error {
	return r.db.WithContext(ctx).Save(investment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	if err := r.db.WithContext(ctx).First(&investment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &investment, nil
}

// FindByIDForUpdate locks the investment row, serializing funding cap checks
// and sale declarations against the same project.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&investment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &investment, nil
}

func (r *repository) List(ctx context.Context) ([]models.Investment, error) {
	var list []models.Investment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
