package accrual

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/logger"
	"github.com/investrahq/investra-backend/pkg/money"
	"github.com/investrahq/investra-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service generates per-participant monthly profit-share line items. Safe to
// re-run any number of times within a period.
type Service interface {
	RunForPeriod(ctx context.Context, period types.Period) error
}

type service struct {
	tx           txRunner
	participants participants.Repository
	monthly      ledgers.MonthlyRepository
	logg         *logger.Logger
}

// NewService wires the accrual sweep.
func NewService(tx txRunner, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
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
		participants: participantsRepo,
		monthly:      monthlyRepo,
		logg:         logg,
	}, nil
}

// RunForPeriod sweeps every active participant. A failure on one participant
// is logged and collected but never aborts the rest of the portfolio; each
// participant commits in its own transaction.
func (s *service) RunForPeriod(ctx context.Context, period types.Period) error {
	if period.IsZero() {
		period = types.CurrentPeriod()
	}

	active, err := s.participants.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active participants: %w", err)
	}

	var errs error
	for i := range active {
		participant := active[i]
		pctx := s.logg.WithInvestmentID(ctx, participant.InvestmentID.String())
		pctx = s.logg.WithInvestorID(pctx, participant.InvestorID.String())
		if err := s.accrueParticipant(pctx, &participant, period); err != nil {
			s.logg.Error(pctx, "accrual failed for participant", err)
			errs = multierr.Append(errs, fmt.Errorf("participant %s: %w", participant.ID, err))
		}
	}
	return errs
}

func (s *service) accrueParticipant(ctx context.Context, participant *models.Participant, period types.Period) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		participantsRepo := s.participants.WithTx(tx)
		monthlyRepo := s.monthly.WithTx(tx)

		locked, err := participantsRepo.FindByPairForUpdate(ctx, participant.InvestorID, participant.InvestmentID)
		if err != nil {
			return fmt.Errorf("lock participant: %w", err)
		}

		exists, err := monthlyRepo.ExistsForScope(ctx, period, locked.InvestmentID, &locked.InvestorID)
		if err != nil {
			return fmt.Errorf("check period record: %w", err)
		}
		if !exists {
			monthlyProfit := money.Percent(locked.Amount, locked.MonthlyRate)
			record := &models.MonthlyTransaction{
				Period:          period,
				InvestmentID:    locked.InvestmentID,
				InvestorID:      &locked.InvestorID,
				Profit:          monthlyProfit,
				MonthlyTotalDue: monthlyProfit,
				Status:          enums.LedgerStatusDue,
				PaymentLog: types.PaymentLog{{
					Type:       enums.PaymentEntryProfitPayment,
					DueAmount:  monthlyProfit,
					PaidAmount: decimal.Zero,
					Status:     enums.LedgerStatusDue,
					At:         time.Now().UTC(),
				}},
			}
			if err := monthlyRepo.Create(ctx, record); err != nil {
				return fmt.Errorf("create period record: %w", err)
			}
			locked.TotalDue = money.Round2(locked.TotalDue.Add(monthlyProfit))
			s.logg.Info(ctx, "monthly profit accrued")
		}

		// self-healing: paid aggregate is always recomputed from the ledgers
		records, err := monthlyRepo.ListByParticipant(ctx, locked.InvestmentID, locked.InvestorID)
		if err != nil {
			return fmt.Errorf("list period records: %w", err)
		}
		locked.TotalPaid = ledgers.PaidAcross(records)

		if err := participantsRepo.Update(ctx, locked); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}
		return nil
	})
}
