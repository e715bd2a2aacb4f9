package investments

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	pkgerrors "github.com/investrahq/investra-backend/pkg/errors"
	"github.com/investrahq/investra-backend/pkg/money"
)

// Service exposes investment lifecycle operations. Sale declarations live in
// the distribution engine, not here.
type Service interface {
	Create(ctx context.Context, input CreateInvestmentInput) (*models.Investment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	List(ctx context.Context) ([]models.Investment, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvestmentInput) (*models.Investment, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds an investment service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("investment repository required")
	}
	return &service{repo: repo, validate: newValidator()}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// CreateInvestmentInput captures the fields of a new funding project.
type CreateInvestmentInput struct {
	Title          string          `json:"title" validate:"required,min=2"`
	Details        string          `json:"details"`
	AmountRequired decimal.Decimal `json:"amount_required"`
	AdminCostRate  decimal.Decimal `json:"admin_cost_rate"`
}

// UpdateInvestmentInput captures the mutable descriptive fields. Investments
// are never deleted, only blocked.
type UpdateInvestmentInput struct {
	Title         *string                 `json:"title" validate:"omitempty,min=2"`
	Details       *string                 `json:"details"`
	AdminCostRate *decimal.Decimal        `json:"admin_cost_rate"`
	Status        *enums.InvestmentStatus `json:"status"`
}

func (s *service) Create(ctx context.Context, input CreateInvestmentInput) (*models.Investment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid investment payload")
	}
	if !input.AmountRequired.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount required must be positive")
	}
	if input.AdminCostRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin cost rate must not be negative")
	}

	investment := &models.Investment{
		Title:          strings.TrimSpace(input.Title),
		Details:        strings.TrimSpace(input.Details),
		AmountRequired: money.Round2(input.AmountRequired),
		AdminCostRate:  money.Round2(input.AdminCostRate),
		Status:         enums.InvestmentStatusActive,
	}
	if err := s.repo.Create(ctx, investment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create investment")
	}
	return investment, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investment id is required")
	}
	investment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "investment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment")
	}
	return investment, nil
}

func (s *service) List(ctx context.Context) ([]models.Investment, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list investments")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInvestmentInput) (*models.Investment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid investment payload")
	}
	investment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		investment.Title = strings.TrimSpace(*input.Title)
	}
	if input.Details != nil {
		investment.Details = strings.TrimSpace(*input.Details)
	}
	if input.AdminCostRate != nil {
		if input.AdminCostRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin cost rate must not be negative")
		}
		investment.AdminCostRate = money.Round2(*input.AdminCostRate)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid investment status %q", *input.Status))
		}
		investment.Status = *input.Status
	}

	if err := s.repo.Update(ctx, investment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update investment")
	}
	return investment, nil
}
