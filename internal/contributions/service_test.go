package contributions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/internal/investments"
	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
	"github.com/investrahq/investra-backend/pkg/config"
	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	pkgerrors "github.com/investrahq/investra-backend/pkg/errors"
	"github.com/investrahq/investra-backend/pkg/logger"
	"github.com/investrahq/investra-backend/pkg/types"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubInvestmentsRepo struct {
	byID map[uuid.UUID]*models.Investment
}

func (s *stubInvestmentsRepo) WithTx(tx *gorm.DB) investments.Repository { return s }
func (s *stubInvestmentsRepo) Create(ctx context.Context, investment *models.Investment) error {
	s.byID[investment.ID] = investment
	return nil
}
func (s *stubInvestmentsRepo) Update(ctx context.Context, investment *models.Investment) error {
	s.byID[investment.ID] = investment
	return nil
}
func (s *stubInvestmentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	investment, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return investment, nil
}
func (s *stubInvestmentsRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	return s.FindByID(ctx, id)
}
func (s *stubInvestmentsRepo) List(ctx context.Context) ([]models.Investment, error) {
	return nil, nil
}

type stubParticipantsRepo struct {
	rows []*models.Participant
}

func (s *stubParticipantsRepo) WithTx(tx *gorm.DB) participants.Repository { return s }
func (s *stubParticipantsRepo) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	s.rows = append(s.rows, participant)
	return nil
}
func (s *stubParticipantsRepo) Update(ctx context.Context, participant *models.Participant) error {
	return nil
}
func (s *stubParticipantsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubParticipantsRepo) FindByPair(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error) {
	for _, row := range s.rows {
		if row.InvestorID == investorID && row.InvestmentID == investmentID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubParticipantsRepo) FindByPairForUpdate(ctx context.Context, investorID, investmentID uuid.UUID) (*models.Participant, error) {
	return s.FindByPair(ctx, investorID, investmentID)
}
func (s *stubParticipantsRepo) ListByInvestment(ctx context.Context, investmentID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	for _, row := range s.rows {
		if row.InvestmentID == investmentID {
			list = append(list, *row)
		}
	}
	return list, nil
}
func (s *stubParticipantsRepo) ListActive(ctx context.Context) ([]models.Participant, error) {
	var list []models.Participant
	for _, row := range s.rows {
		if row.Status == enums.ParticipantStatusActive {
			list = append(list, *row)
		}
	}
	return list, nil
}
func (s *stubParticipantsRepo) SumAmounts(ctx context.Context, investmentID uuid.UUID, excludeInvestor *uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range s.rows {
		if row.InvestmentID != investmentID {
			continue
		}
		if excludeInvestor != nil && row.InvestorID == *excludeInvestor {
			continue
		}
		total = total.Add(row.Amount)
	}
	return total, nil
}

type stubMonthlyRepo struct {
	rows []*models.MonthlyTransaction
}

func (s *stubMonthlyRepo) WithTx(tx *gorm.DB) ledgers.MonthlyRepository { return s }
func (s *stubMonthlyRepo) Create(ctx context.Context, record *models.MonthlyTransaction) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.rows = append(s.rows, record)
	return nil
}
func (s *stubMonthlyRepo) Update(ctx context.Context, record *models.MonthlyTransaction) error {
	return nil
}
func (s *stubMonthlyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubMonthlyRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MonthlyTransaction, error) {
	return s.FindByID(ctx, id)
}
func (s *stubMonthlyRepo) FindByScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (*models.MonthlyTransaction, error) {
	for _, row := range s.rows {
		if row.Period != period || row.InvestmentID != investmentID {
			continue
		}
		if investorID == nil && row.InvestorID == nil {
			return row, nil
		}
		if investorID != nil && row.InvestorID != nil && *row.InvestorID == *investorID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubMonthlyRepo) ExistsForScope(ctx context.Context, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID) (bool, error) {
	_, err := s.FindByScope(ctx, period, investmentID, investorID)
	if err != nil {
		return false, nil
	}
	return true, nil
}
func (s *stubMonthlyRepo) ListByParticipant(ctx context.Context, investmentID, investorID uuid.UUID) ([]models.MonthlyTransaction, error) {
	var list []models.MonthlyTransaction
	for _, row := range s.rows {
		if row.InvestmentID == investmentID && row.InvestorID != nil && *row.InvestorID == investorID {
			list = append(list, *row)
		}
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

func testAccrualConfig() config.AccrualConfig {
	return config.AccrualConfig{
		Interval:           24 * time.Hour,
		LockTTL:            time.Hour,
		MonthlyRatePercent: "2.5",
	}
}

func newTestService(t *testing.T, inv *stubInvestmentsRepo, parts *stubParticipantsRepo, monthly *stubMonthlyRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "contributions-test"})
	svc, err := NewService(stubTxRunner{}, inv, parts, monthly, testAccrualConfig(), logg)
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func seedInvestment(required string) (*stubInvestmentsRepo, *models.Investment) {
	investment := &models.Investment{
		ID:             uuid.New(),
		Title:          "Project",
		AmountRequired: dec(required),
		Status:         enums.InvestmentStatusActive,
	}
	return &stubInvestmentsRepo{byID: map[uuid.UUID]*models.Investment{investment.ID: investment}}, investment
}

func TestContributeAdmitsNewParticipant(t *testing.T) {
	inv, investment := seedInvestment("10000")
	parts := &stubParticipantsRepo{}
	monthly := &stubMonthlyRepo{}
	svc := newTestService(t, inv, parts, monthly)

	investorID := uuid.New()
	result, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:          investorID,
		InvestmentID:        investment.ID,
		Amount:              dec("6000"),
		AgentCommissionRate: dec("20"),
	})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected a new participant")
	}
	p := result.Participant
	if !p.Amount.Equal(dec("6000")) || !p.TotalDue.Equal(dec("6000")) || !p.TotalPaid.IsZero() {
		t.Fatalf("unexpected participant aggregates: amount=%s due=%s paid=%s", p.Amount, p.TotalDue, p.TotalPaid)
	}
	if !p.MonthlyRate.Equal(dec("2.5")) {
		t.Fatalf("expected configured default monthly rate, got %s", p.MonthlyRate)
	}

	ledger := result.Ledger
	if ledger.Status != enums.LedgerStatusDue {
		t.Fatalf("expected due status, got %s", ledger.Status)
	}
	if len(ledger.PaymentLog) != 1 {
		t.Fatalf("expected one payment log entry, got %d", len(ledger.PaymentLog))
	}
	entry := ledger.PaymentLog[0]
	if entry.Type != enums.PaymentEntryInvestment || !entry.DueAmount.Equal(dec("6000")) || !entry.PaidAmount.IsZero() {
		t.Fatalf("unexpected initial payment entry: %+v", entry)
	}
	if len(ledger.Logs) != 1 || ledger.Logs[0].Type != enums.NarrativeInvestmentAdded {
		t.Fatalf("expected investmentAdded narrative, got %+v", ledger.Logs)
	}
	if err := ledger.Logs[0].Validate(); err != nil {
		t.Fatalf("narrative entry invalid: %v", err)
	}
}

func TestContributeEnforcesFundingCap(t *testing.T) {
	inv, investment := seedInvestment("10000")
	parts := &stubParticipantsRepo{}
	monthly := &stubMonthlyRepo{}
	svc := newTestService(t, inv, parts, monthly)

	if _, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   uuid.New(),
		InvestmentID: investment.ID,
		Amount:       dec("6000"),
	}); err != nil {
		t.Fatalf("first contribution: %v", err)
	}

	_, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   uuid.New(),
		InvestmentID: investment.ID,
		Amount:       dec("4000.01"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected funding cap rejection, got %v", err)
	}
	if len(parts.rows) != 1 {
		t.Fatalf("rejected contribution must not create a participant")
	}

	if _, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   uuid.New(),
		InvestmentID: investment.ID,
		Amount:       dec("4000"),
	}); err != nil {
		t.Fatalf("exact fill contribution: %v", err)
	}
}

func TestContributeIncreasesExistingStake(t *testing.T) {
	inv, investment := seedInvestment("10000")
	parts := &stubParticipantsRepo{}
	monthly := &stubMonthlyRepo{}
	svc := newTestService(t, inv, parts, monthly)

	investorID := uuid.New()
	first, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   investorID,
		InvestmentID: investment.ID,
		Amount:       dec("3000"),
	})
	if err != nil {
		t.Fatalf("first contribution: %v", err)
	}

	second, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   investorID,
		InvestmentID: investment.ID,
		Amount:       dec("2000"),
	})
	if err != nil {
		t.Fatalf("second contribution: %v", err)
	}
	if second.Created {
		t.Fatalf("expected stake increase, not a new participant")
	}
	if !second.Participant.Amount.Equal(dec("5000")) {
		t.Fatalf("expected amount 5000, got %s", second.Participant.Amount)
	}
	if !second.Participant.TotalDue.Equal(dec("5000")) {
		t.Fatalf("expected total due 5000, got %s", second.Participant.TotalDue)
	}
	if second.Ledger.ID != first.Ledger.ID {
		t.Fatalf("increase should reuse the current period ledger")
	}
	if second.Ledger.Status != enums.LedgerStatusPartial {
		t.Fatalf("expected partial status after increase, got %s", second.Ledger.Status)
	}
	last := second.Ledger.Logs[len(second.Ledger.Logs)-1]
	if last.Type != enums.NarrativeInvestmentUpdated {
		t.Fatalf("expected investmentUpdated narrative, got %s", last.Type)
	}
	if err := last.Validate(); err != nil {
		t.Fatalf("narrative entry invalid: %v", err)
	}
}

func TestContributeUnknownInvestment(t *testing.T) {
	inv := &stubInvestmentsRepo{byID: map[uuid.UUID]*models.Investment{}}
	svc := newTestService(t, inv, &stubParticipantsRepo{}, &stubMonthlyRepo{})

	_, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   uuid.New(),
		InvestmentID: uuid.New(),
		Amount:       dec("100"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplySkipsCapCheckWhenRequested(t *testing.T) {
	inv, investment := seedInvestment("10000")
	parts := &stubParticipantsRepo{}
	monthly := &stubMonthlyRepo{}
	svc := newTestService(t, inv, parts, monthly)

	investorID := uuid.New()
	if _, err := svc.Contribute(context.Background(), ContributeInput{
		InvestorID:   investorID,
		InvestmentID: investment.ID,
		Amount:       dec("10000"),
	}); err != nil {
		t.Fatalf("fill contribution: %v", err)
	}

	// same-call capital increase during a sale bypasses the cap re-check
	result, err := svc.Apply(context.Background(), &gorm.DB{}, ContributeInput{
		InvestorID:   investorID,
		InvestmentID: investment.ID,
		Amount:       dec("500"),
	}, true)
	if err != nil {
		t.Fatalf("apply with skip: %v", err)
	}
	if !result.Participant.Amount.Equal(dec("10500")) {
		t.Fatalf("expected amount 10500, got %s", result.Participant.Amount)
	}
}
