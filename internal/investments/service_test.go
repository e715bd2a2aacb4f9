package investments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	pkgerrors "github.com/investrahq/investra-backend/pkg/errors"
)

type stubRepo struct {
	byID    map[uuid.UUID]*models.Investment
	created []*models.Investment
	updated []*models.Investment
	findErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[uuid.UUID]*models.Investment{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, investment *models.Investment) error {
	if investment.ID == uuid.Nil {
		investment.ID = uuid.New()
	}
	s.byID[investment.ID] = investment
	s.created = append(s.created, investment)
	return nil
}

func (s *stubRepo) Update(ctx context.Context, investment *models.Investment) error {
	s.byID[investment.ID] = investment
	s.updated = append(s.updated, investment)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	investment, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return investment, nil
}

func (s *stubRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	return s.FindByID(ctx, id)
}

func (s *stubRepo) List(ctx context.Context) ([]models.Investment, error) {
	var list []models.Investment
	for _, investment := range s.byID {
		list = append(list, *investment)
	}
	return list, nil
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateInvestment(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	investment, err := svc.Create(context.Background(), CreateInvestmentInput{
		Title:          "  Warehouse A  ",
		Details:        "cold storage",
		AmountRequired: dec("10000"),
		AdminCostRate:  dec("10"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if investment.Title != "Warehouse A" {
		t.Fatalf("expected trimmed title, got %q", investment.Title)
	}
	if investment.Status != enums.InvestmentStatusActive {
		t.Fatalf("expected active status, got %s", investment.Status)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create, got %d", len(repo.created))
	}
}

func TestCreateInvestmentRejectsBadInput(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	cases := []struct {
		name  string
		input CreateInvestmentInput
	}{
		{"missing title", CreateInvestmentInput{AmountRequired: dec("100")}},
		{"zero amount", CreateInvestmentInput{Title: "Project", AmountRequired: decimal.Zero}},
		{"negative amount", CreateInvestmentInput{Title: "Project", AmountRequired: dec("-5")}},
		{"negative rate", CreateInvestmentInput{Title: "Project", AmountRequired: dec("100"), AdminCostRate: dec("-1")}},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("no investment should be persisted on validation failure")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := NewService(newStubRepo())
	_, err := svc.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDDependencyFailure(t *testing.T) {
	repo := newStubRepo()
	repo.findErr = errors.New("connection reset")
	svc, _ := NewService(repo)
	_, err := svc.GetByID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUpdateInvestmentBlocks(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	created, err := svc.Create(context.Background(), CreateInvestmentInput{
		Title:          "Project",
		AmountRequired: dec("5000"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	blocked := enums.InvestmentStatusBlocked
	rate := dec("12.5")
	updated, err := svc.Update(context.Background(), created.ID, UpdateInvestmentInput{
		Status:        &blocked,
		AdminCostRate: &rate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.InvestmentStatusBlocked {
		t.Fatalf("expected blocked status, got %s", updated.Status)
	}
	if !updated.AdminCostRate.Equal(dec("12.5")) {
		t.Fatalf("expected rate 12.5, got %s", updated.AdminCostRate)
	}
}

func TestUpdateInvestmentRejectsInvalidStatus(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	created, _ := svc.Create(context.Background(), CreateInvestmentInput{
		Title:          "Project",
		AmountRequired: dec("5000"),
	})

	bogus := enums.InvestmentStatus("retired")
	_, err := svc.Update(context.Background(), created.ID, UpdateInvestmentInput{Status: &bogus})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
