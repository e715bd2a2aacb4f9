package contributions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/internal/investments"
	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
	"github.com/investrahq/investra-backend/pkg/config"
	"github.com/investrahq/investra-backend/pkg/db"
	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	pkgerrors "github.com/investrahq/investra-backend/pkg/errors"
	"github.com/investrahq/investra-backend/pkg/logger"
	"github.com/investrahq/investra-backend/pkg/money"
	"github.com/investrahq/investra-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service admits new participants and increases existing stakes while
// enforcing the project funding cap.
type Service interface {
	Contribute(ctx context.Context, input ContributeInput) (*Result, error)
	Apply(ctx context.Context, tx *gorm.DB, input ContributeInput, skipCapCheck bool) (*Result, error)
}

type service struct {
	tx           txRunner
	investments  investments.Repository
	participants participants.Repository
	monthly      ledgers.MonthlyRepository
	accrualCfg   config.AccrualConfig
	logg         *logger.Logger
}

// ContributeInput captures one capital contribution. A zero Period means the
// current calendar month. MonthlyRate falls back to the configured default
// when unset.
type ContributeInput struct {
	InvestorID          uuid.UUID
	InvestmentID        uuid.UUID
	Amount              decimal.Decimal
	AgentCommissionRate decimal.Decimal
	MonthlyRate         *decimal.Decimal
	Period              types.Period
}

// Result reports the mutated stake and the period ledger it touched.
type Result struct {
	Participant *models.Participant
	Ledger      *models.MonthlyTransaction
	Created     bool
}

// NewService wires the contribution manager.
func NewService(tx txRunner, investmentsRepo investments.Repository, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, accrualCfg config.AccrualConfig, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if investmentsRepo == nil {
		return nil, fmt.Errorf("investments repository required")
	}
	if participantsRepo == nil {
		return nil, fmt.Errorf("participants repository required")
	}
	if monthlyRepo == nil {
		return nil, fmt.Errorf("monthly ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:           tx,
		investments:  investmentsRepo,
		participants: participantsRepo,
		monthly:      monthlyRepo,
		accrualCfg:   accrualCfg,
		logg:         logg,
	}, nil
}

func (s *service) Contribute(ctx context.Context, input ContributeInput) (*Result, error) {
	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.Apply(ctx, tx, input, false)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Apply runs the contribution inside the caller's transaction. The funding
// cap check reads participant totals under the investment row lock, before
// any write, so two concurrent contributions cannot both pass it.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, input ContributeInput, skipCapCheck bool) (*Result, error) {
	if input.InvestorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investor id is required")
	}
	if input.InvestmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investment id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution amount must be positive")
	}
	if input.AgentCommissionRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent commission rate must not be negative")
	}

	period := input.Period
	if period.IsZero() {
		period = types.CurrentPeriod()
	}
	amount := money.Round2(input.Amount)

	investmentsRepo := s.investments.WithTx(tx)
	participantsRepo := s.participants.WithTx(tx)
	monthlyRepo := s.monthly.WithTx(tx)

	investment, err := investmentsRepo.FindByIDForUpdate(ctx, input.InvestmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "investment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment")
	}

	if !skipCapCheck {
		invested, err := participantsRepo.SumAmounts(ctx, investment.ID, &input.InvestorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum invested capital")
		}
		participant, err := participantsRepo.FindByPair(ctx, input.InvestorID, investment.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		existing := decimal.Zero
		if participant != nil {
			existing = participant.Amount
		}
		if invested.Add(existing).Add(amount).GreaterThan(investment.AmountRequired) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "funding cap exceeded")
		}
	}

	participant, err := participantsRepo.FindByPairForUpdate(ctx, input.InvestorID, investment.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		return s.admitParticipant(ctx, participantsRepo, monthlyRepo, investment, input, amount, period)
	}
	return s.increaseStake(ctx, participantsRepo, monthlyRepo, participant, investment, amount, period)
}

func (s *service) admitParticipant(ctx context.Context, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, investment *models.Investment, input ContributeInput, amount decimal.Decimal, period types.Period) (*Result, error) {
	monthlyRate := s.accrualCfg.MonthlyRate()
	if input.MonthlyRate != nil {
		if input.MonthlyRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly rate must not be negative")
		}
		monthlyRate = money.Round2(*input.MonthlyRate)
	}

	participant := &models.Participant{
		InvestorID:          input.InvestorID,
		InvestmentID:        investment.ID,
		Amount:              amount,
		TotalDue:            amount,
		TotalPaid:           decimal.Zero,
		MonthlyRate:         monthlyRate,
		AgentCommissionRate: money.Round2(input.AgentCommissionRate),
		Status:              enums.ParticipantStatusActive,
	}
	if err := participantsRepo.Create(ctx, participant); err != nil {
		if db.IsUniqueViolation(err, "idx_participant_investor_investment") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "participant already admitted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create participant")
	}

	now := time.Now().UTC()
	ledger := &models.MonthlyTransaction{
		Period:          period,
		InvestmentID:    investment.ID,
		InvestorID:      &participant.InvestorID,
		Profit:          decimal.Zero,
		MonthlyTotalDue: amount,
		Status:          enums.LedgerStatusDue,
		PaymentLog: types.PaymentLog{{
			Type:       enums.PaymentEntryInvestment,
			DueAmount:  amount,
			PaidAmount: decimal.Zero,
			Status:     enums.LedgerStatusDue,
			At:         now,
		}},
		Logs: types.NarrativeLog{{
			Type:            enums.NarrativeInvestmentAdded,
			Message:         fmt.Sprintf("capital contribution of %s admitted", amount),
			At:              now,
			InvestmentAdded: &types.InvestmentAddedPayload{Amount: amount},
		}},
	}
	if err := monthlyRepo.Create(ctx, ledger); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create monthly ledger")
	}

	ctx = s.logg.WithInvestmentID(ctx, investment.ID.String())
	ctx = s.logg.WithInvestorID(ctx, participant.InvestorID.String())
	s.logg.Info(ctx, "participant admitted")

	return &Result{Participant: participant, Ledger: ledger, Created: true}, nil
}

func (s *service) increaseStake(ctx context.Context, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, participant *models.Participant, investment *models.Investment, amount decimal.Decimal, period types.Period) (*Result, error) {
	previousAmount := participant.Amount
	participant.Amount = money.Round2(participant.Amount.Add(amount))
	participant.TotalDue = money.Round2(participant.TotalDue.Add(amount))
	if err := participantsRepo.Update(ctx, participant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update participant")
	}

	now := time.Now().UTC()
	entry := types.NarrativeEntry{
		Type:    enums.NarrativeInvestmentUpdated,
		Message: fmt.Sprintf("stake increased by %s to %s", amount, participant.Amount),
		At:      now,
		InvestmentUpdated: &types.InvestmentUpdatedPayload{
			PreviousAmount: previousAmount,
			Contribution:   amount,
			NewTotalDue:    participant.TotalDue,
		},
	}

	ledger, err := monthlyRepo.FindByScope(ctx, period, investment.ID, &participant.InvestorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load monthly ledger")
		}
		ledger = &models.MonthlyTransaction{
			Period:          period,
			InvestmentID:    investment.ID,
			InvestorID:      &participant.InvestorID,
			Profit:          decimal.Zero,
			MonthlyTotalDue: amount,
			// surfaced as pending review until the increase is settled
			Status: enums.LedgerStatusPartial,
			Logs:   types.NarrativeLog{entry},
		}
		if err := monthlyRepo.Create(ctx, ledger); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create monthly ledger")
		}
	} else {
		ledger.MonthlyTotalDue = money.Round2(ledger.MonthlyTotalDue.Add(amount))
		ledger.Status = enums.LedgerStatusPartial
		ledger.Logs = append(ledger.Logs, entry)
		if err := monthlyRepo.Update(ctx, ledger); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update monthly ledger")
		}
	}

	ctx = s.logg.WithInvestmentID(ctx, investment.ID.String())
	ctx = s.logg.WithInvestorID(ctx, participant.InvestorID.String())
	s.logg.Info(ctx, "stake increased")

	return &Result{Participant: participant, Ledger: ledger, Created: false}, nil
}
