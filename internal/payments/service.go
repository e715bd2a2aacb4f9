package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
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

// Service applies payments against outstanding ledger dues and folds the
// deltas into the owning aggregates. Overpayment is never allowed.
type Service interface {
	ApplyInvestorPayment(ctx context.Context, input ApplyPaymentInput) (*InvestorPaymentResult, error)
	ApplyAgentPayment(ctx context.Context, input ApplyPaymentInput) (*AgentPaymentResult, error)
	CloseParticipant(ctx context.Context, participantID uuid.UUID) (*CloseResult, error)
}

// ApplyPaymentInput identifies one ledger and the amount being paid.
type ApplyPaymentInput struct {
	LedgerID uuid.UUID
	Amount   decimal.Decimal
	Note     string
}

// InvestorPaymentResult reports the mutated ledger and stake.
type InvestorPaymentResult struct {
	Ledger      *models.MonthlyTransaction
	Participant *models.Participant
}

// AgentPaymentResult reports the mutated commission ledger and summary.
type AgentPaymentResult struct {
	Ledger  *models.AgentTransaction
	Summary *models.AgentCommissionSummary
}

// CloseResult reports the closed-out stake and its final ledger.
type CloseResult struct {
	Participant *models.Participant
	Ledger      *models.MonthlyTransaction
}

type service struct {
	tx           txRunner
	monthly      ledgers.MonthlyRepository
	agents       ledgers.AgentRepository
	summaries    ledgers.SummaryRepository
	participants participants.Repository
	logg         *logger.Logger
}

// NewService wires the payment subsystem.
func NewService(tx txRunner, monthlyRepo ledgers.MonthlyRepository, agentsRepo ledgers.AgentRepository, summariesRepo ledgers.SummaryRepository, participantsRepo participants.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if monthlyRepo == nil {
		return nil, fmt.Errorf("monthly ledger repository required")
	}
	if agentsRepo == nil {
		return nil, fmt.Errorf("agent ledger repository required")
	}
	if summariesRepo == nil {
		return nil, fmt.Errorf("commission summary repository required")
	}
	if participantsRepo == nil {
		return nil, fmt.Errorf("participants repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:           tx,
		monthly:      monthlyRepo,
		agents:       agentsRepo,
		summaries:    summariesRepo,
		participants: participantsRepo,
		logg:         logg,
	}, nil
}

func validatePayment(input ApplyPaymentInput) (decimal.Decimal, error) {
	if input.LedgerID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "ledger id is required")
	}
	amount := money.Round2(input.Amount)
	if !amount.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	return amount, nil
}

// ApplyInvestorPayment settles part or all of a monthly ledger's outstanding
// due. Concurrent payments against the same ledger serialize on the row lock
// so two of them cannot both consume the same due snapshot.
func (s *service) ApplyInvestorPayment(ctx context.Context, input ApplyPaymentInput) (*InvestorPaymentResult, error) {
	amount, err := validatePayment(input)
	if err != nil {
		return nil, err
	}

	var result *InvestorPaymentResult
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		monthlyRepo := s.monthly.WithTx(tx)
		participantsRepo := s.participants.WithTx(tx)

		ledger, err := monthlyRepo.FindByIDForUpdate(ctx, input.LedgerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ledger not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger")
		}
		if ledger.InvestorID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "investment-wide records do not accept payments")
		}

		outstanding := ledger.MonthlyTotalDue
		if amount.GreaterThan(outstanding) {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds outstanding due")
		}

		now := time.Now().UTC()
		remaining := money.Round2(outstanding.Sub(amount))
		status := ledgers.StatusFor(remaining, ledgers.SumPaid(ledger.PaymentLog).Add(amount))
		ledger.PaymentLog = append(ledger.PaymentLog, types.PaymentEntry{
			Type:       enums.PaymentEntryProfitPayment,
			DueAmount:  outstanding,
			PaidAmount: amount,
			Status:     status,
			Note:       input.Note,
			At:         now,
		})
		ledger.MonthlyTotalDue = remaining
		ledgers.ReconcileMonthly(ledger)
		ledger.Logs = append(ledger.Logs, types.NarrativeEntry{
			Type:        enums.NarrativePaymentMade,
			Message:     fmt.Sprintf("payment of %s applied, %s remaining", amount, remaining),
			At:          now,
			PaymentMade: &types.PaymentMadePayload{PaidAmount: amount, RemainingDue: remaining},
		})
		if err := monthlyRepo.Update(ctx, ledger); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger")
		}

		participant, err := participantsRepo.FindByPairForUpdate(ctx, *ledger.InvestorID, ledger.InvestmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "participant not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		// additive delta propagation, not a full sibling scan
		participant.TotalDue = money.Round2(participant.TotalDue.Sub(amount))
		participant.TotalPaid = money.Round2(participant.TotalPaid.Add(amount))
		if err := participantsRepo.Update(ctx, participant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update participant")
		}

		result = &InvestorPaymentResult{Ledger: ledger, Participant: participant}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ctx = s.logg.WithInvestmentID(ctx, result.Ledger.InvestmentID.String())
	ctx = s.logg.WithInvestorID(ctx, result.Participant.InvestorID.String())
	s.logg.Info(ctx, "investor payment applied")
	return result, nil
}

// ApplyAgentPayment settles part or all of a commission ledger's outstanding
// due and folds the delta into the (agent, investor) summary.
func (s *service) ApplyAgentPayment(ctx context.Context, input ApplyPaymentInput) (*AgentPaymentResult, error) {
	amount, err := validatePayment(input)
	if err != nil {
		return nil, err
	}

	var result *AgentPaymentResult
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		agentsRepo := s.agents.WithTx(tx)
		summariesRepo := s.summaries.WithTx(tx)

		ledger, err := agentsRepo.FindByIDForUpdate(ctx, input.LedgerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ledger not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger")
		}

		outstanding := ledger.CommissionDue
		if amount.GreaterThan(outstanding) {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds outstanding due")
		}

		now := time.Now().UTC()
		remaining := money.Round2(outstanding.Sub(amount))
		status := ledgers.StatusFor(remaining, ledgers.SumPaid(ledger.PaymentLog).Add(amount))
		ledger.PaymentLog = append(ledger.PaymentLog, types.PaymentEntry{
			Type:       enums.PaymentEntryCommissionPayment,
			DueAmount:  outstanding,
			PaidAmount: amount,
			Status:     status,
			Note:       input.Note,
			At:         now,
		})
		ledger.CommissionDue = remaining
		ledgers.ReconcileAgent(ledger)
		ledger.Logs = append(ledger.Logs, types.NarrativeEntry{
			Type:        enums.NarrativePaymentMade,
			Message:     fmt.Sprintf("commission payment of %s applied, %s remaining", amount, remaining),
			At:          now,
			PaymentMade: &types.PaymentMadePayload{PaidAmount: amount, RemainingDue: remaining},
		})
		if err := agentsRepo.Update(ctx, ledger); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger")
		}

		summary, err := summariesRepo.ApplyDelta(ctx, ledger.AgentID, ledger.InvestorID, amount.Neg(), amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update commission summary")
		}

		result = &AgentPaymentResult{Ledger: ledger, Summary: summary}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ctx = s.logg.WithInvestmentID(ctx, result.Ledger.InvestmentID.String())
	s.logg.Info(ctx, "agent commission payment applied")
	return result, nil
}

// CloseParticipant force-settles a blocked, fully collected stake: the
// current-period ledger is marked paid with a closure entry and the stake's
// capital basis is zeroed.
func (s *service) CloseParticipant(ctx context.Context, participantID uuid.UUID) (*CloseResult, error) {
	if participantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant id is required")
	}

	var result *CloseResult
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		monthlyRepo := s.monthly.WithTx(tx)
		participantsRepo := s.participants.WithTx(tx)

		participant, err := participantsRepo.FindByID(ctx, participantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "participant not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		if participant.Status != enums.ParticipantStatusBlocked {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only blocked participants can be closed")
		}
		if !participant.TotalDue.IsZero() || !participant.TotalPaid.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "participant dues are not fully collected")
		}

		now := time.Now().UTC()
		period := types.CurrentPeriod()
		ledger, err := monthlyRepo.FindByScope(ctx, period, participant.InvestmentID, &participant.InvestorID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger")
			}
			ledger = &models.MonthlyTransaction{
				Period:       period,
				InvestmentID: participant.InvestmentID,
				InvestorID:   &participant.InvestorID,
			}
			if err := monthlyRepo.Create(ctx, ledger); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger")
			}
		}

		ledger.PaymentLog = append(ledger.PaymentLog, types.PaymentEntry{
			Type:       enums.PaymentEntryCloseProject,
			DueAmount:  ledger.MonthlyTotalDue,
			PaidAmount: decimal.Zero,
			Status:     enums.LedgerStatusPaid,
			At:         now,
		})
		ledger.MonthlyTotalDue = decimal.Zero
		ledger.Status = enums.LedgerStatusPaid
		ledger.Logs = append(ledger.Logs, types.NarrativeEntry{
			Type:          enums.NarrativeProjectClosed,
			Message:       fmt.Sprintf("project closed with %s collected", participant.TotalPaid),
			At:            now,
			ProjectClosed: &types.ProjectClosedPayload{FinalPaid: participant.TotalPaid},
		})
		if err := monthlyRepo.Update(ctx, ledger); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger")
		}

		participant.Amount = decimal.Zero
		if err := participantsRepo.Update(ctx, participant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update participant")
		}

		result = &CloseResult{Participant: participant, Ledger: ledger}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ctx = s.logg.WithInvestmentID(ctx, result.Participant.InvestmentID.String())
	ctx = s.logg.WithInvestorID(ctx, result.Participant.InvestorID.String())
	s.logg.Info(ctx, "participant closed out")
	return result, nil
}
