package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/pkg/db/models"
)

// Repository exposes the identity reads the engine needs: investor display
// names and agent assignment.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AgentFor resolves the agent assigned to the given investor. Returns
// (nil, nil) when the investor has no agent.
func (r *Repository) AgentFor(ctx context.Context, investorID uuid.UUID) (*models.User, error) {
	investor, err := r.FindByID(ctx, investorID)
	if err != nil {
		return nil, err
	}
	if investor.AgentID == nil {
		return nil, nil
	}
	return r.FindByID(ctx, *investor.AgentID)
}
