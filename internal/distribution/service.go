package distribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/internal/contributions"
	"github.com/investrahq/investra-backend/internal/investments"
	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
	"github.com/investrahq/investra-backend/pkg/config"
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

type saleLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope string, parts ...string) string
}

type identityReader interface {
	AgentFor(ctx context.Context, investorID uuid.UUID) (*models.User, error)
}

// Service is the profit and commission distribution engine. A declared sale
// is computed and committed as one atomic unit; partial distributions are
// never observable.
type Service interface {
	DeclareSale(ctx context.Context, input DeclareSaleInput) (*Result, error)
}

type service struct {
	tx            txRunner
	locker        saleLocker
	investments   investments.Repository
	participants  participants.Repository
	monthly       ledgers.MonthlyRepository
	agents        ledgers.AgentRepository
	summaries     ledgers.SummaryRepository
	identities    identityReader
	contributions contributions.Service
	cfg           config.DistributionConfig
	logg          *logger.Logger
}

// DeclareSaleInput captures one sale declaration. AdminCostRate falls back to
// the investment's stored rate; a zero Period means the current month.
type DeclareSaleInput struct {
	InvestmentID  uuid.UUID
	SaleAmount    decimal.Decimal
	AdminCostRate *decimal.Decimal
	Period        types.Period

	// investment-level field updates applied with the sale
	Title   *string
	Details *string
	Status  *enums.InvestmentStatus

	// optional capital increase applied in the same atomic unit
	CapitalIncrease *CapitalIncreaseInput
}

// CapitalIncreaseInput rides along with a sale declaration; the funding cap
// is not re-checked against the sale.
type CapitalIncreaseInput struct {
	InvestorID          uuid.UUID
	Amount              decimal.Decimal
	AgentCommissionRate decimal.Decimal
}

// Allocation reports one participant's slice of the distribution.
type Allocation struct {
	InvestorID        uuid.UUID
	SharePercent      decimal.Decimal
	InvestorNetProfit decimal.Decimal
	AgentID           *uuid.UUID
	Commission        decimal.Decimal
}

// Result reports the committed distribution.
type Result struct {
	Investment    *models.Investment
	CorrelationID uuid.UUID
	GrossProfit   decimal.Decimal
	AdminCost     decimal.Decimal
	NetProfit     decimal.Decimal
	Allocations   []Allocation
}

// NewService wires the distribution engine.
func NewService(tx txRunner, locker saleLocker, investmentsRepo investments.Repository, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, agentsRepo ledgers.AgentRepository, summariesRepo ledgers.SummaryRepository, identities identityReader, contributionsSvc contributions.Service, cfg config.DistributionConfig, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("sale locker required")
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
	if agentsRepo == nil {
		return nil, fmt.Errorf("agent ledger repository required")
	}
	if summariesRepo == nil {
		return nil, fmt.Errorf("commission summary repository required")
	}
	if identities == nil {
		return nil, fmt.Errorf("identity reader required")
	}
	if contributionsSvc == nil {
		return nil, fmt.Errorf("contributions service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:            tx,
		locker:        locker,
		investments:   investmentsRepo,
		participants:  participantsRepo,
		monthly:       monthlyRepo,
		agents:        agentsRepo,
		summaries:     summariesRepo,
		identities:    identities,
		contributions: contributionsSvc,
		cfg:           cfg,
		logg:          logg,
	}, nil
}

// DeclareSale serializes per investment: two concurrent declarations against
// the same project would otherwise compute shares from the same capital basis
// snapshot and skew the split.
func (s *service) DeclareSale(ctx context.Context, input DeclareSaleInput) (*Result, error) {
	if input.InvestmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investment id is required")
	}
	if input.SaleAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale amount must not be negative")
	}
	if input.AdminCostRate != nil && input.AdminCostRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin cost rate must not be negative")
	}

	lockKey := s.locker.LockKey("sale", input.InvestmentID.String())
	acquired, err := s.locker.SetNX(ctx, lockKey, uuid.NewString(), s.cfg.SaleLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sale lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale declaration already in progress for this investment")
	}
	defer func() {
		if err := s.locker.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Error(ctx, "failed to release sale lock", err)
		}
	}()

	var result *Result
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.distribute(ctx, tx, input)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

func (s *service) distribute(ctx context.Context, tx *gorm.DB, input DeclareSaleInput) (*Result, error) {
	investmentsRepo := s.investments.WithTx(tx)
	participantsRepo := s.participants.WithTx(tx)
	monthlyRepo := s.monthly.WithTx(tx)
	agentsRepo := s.agents.WithTx(tx)
	summariesRepo := s.summaries.WithTx(tx)

	investment, err := investmentsRepo.FindByIDForUpdate(ctx, input.InvestmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "investment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment")
	}

	period := input.Period
	if period.IsZero() {
		period = types.CurrentPeriod()
	}

	saleAmount := money.Round2(input.SaleAmount)
	adminRate := investment.AdminCostRate
	if input.AdminCostRate != nil {
		adminRate = money.Round2(*input.AdminCostRate)
	}

	grossProfit := money.Round2(saleAmount.Sub(investment.AmountRequired))
	adminCost := money.Percent(grossProfit, adminRate)
	netProfit := money.Round2(grossProfit.Sub(adminCost))

	correlationID := uuid.New()
	ctx = s.logg.WithInvestmentID(ctx, investment.ID.String())
	ctx = s.logg.WithCorrelationID(ctx, correlationID.String())

	at := time.Now().UTC()
	saleNarratives := types.NarrativeLog{
		{
			Type:          enums.NarrativeSaleDeclared,
			Message:       fmt.Sprintf("sale declared for %s", saleAmount),
			CorrelationID: correlationID,
			At:            at,
			SaleDeclared:  &types.SaleDeclaredPayload{SaleAmount: saleAmount},
		},
		{
			Type:          enums.NarrativeGrossProfitComputed,
			Message:       fmt.Sprintf("gross profit %s on required capital %s", grossProfit, investment.AmountRequired),
			CorrelationID: correlationID,
			At:            at.Add(time.Millisecond),
			GrossProfit: &types.GrossProfitPayload{
				SaleAmount:     saleAmount,
				AmountRequired: investment.AmountRequired,
				GrossProfit:    grossProfit,
			},
		},
		{
			Type:          enums.NarrativeAdminCostDeclared,
			Message:       fmt.Sprintf("admin cost %s at %s%%", adminCost, adminRate),
			CorrelationID: correlationID,
			At:            at.Add(2 * time.Millisecond),
			AdminCost:     &types.AdminCostPayload{RatePercent: adminRate, AdminCost: adminCost},
		},
		{
			Type:          enums.NarrativeNetProfitAllocated,
			Message:       fmt.Sprintf("net profit %s allocated across participants", netProfit),
			CorrelationID: correlationID,
			At:            at.Add(3 * time.Millisecond),
			NetProfit:     &types.NetProfitPayload{NetProfit: netProfit},
		},
	}

	allParticipants, err := participantsRepo.ListByInvestment(ctx, investment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list participants")
	}

	result := &Result{
		Investment:    investment,
		CorrelationID: correlationID,
		GrossProfit:   grossProfit,
		AdminCost:     adminCost,
		NetProfit:     netProfit,
	}

	for i := range allParticipants {
		participant := &allParticipants[i]
		if participant.Status != enums.ParticipantStatusActive {
			continue
		}
		allocation, err := s.allocate(ctx, participantsRepo, monthlyRepo, agentsRepo, summariesRepo, investment, participant, grossProfit, netProfit, period, correlationID)
		if err != nil {
			return nil, err
		}
		if allocation != nil {
			result.Allocations = append(result.Allocations, *allocation)
		}
	}

	// global narrative and investment-level writes land after every
	// per-participant write has been staged, right before commit
	if err := s.appendInvestmentNarratives(ctx, monthlyRepo, investment.ID, period, saleNarratives); err != nil {
		return nil, err
	}

	if input.CapitalIncrease != nil {
		increase := *input.CapitalIncrease
		if _, err := s.contributions.Apply(ctx, tx, contributions.ContributeInput{
			InvestorID:          increase.InvestorID,
			InvestmentID:        investment.ID,
			Amount:              increase.Amount,
			AgentCommissionRate: increase.AgentCommissionRate,
			Period:              period,
		}, true); err != nil {
			return nil, err
		}
		tag := types.NarrativeEntry{
			Type:          enums.NarrativeInvestmentUpdated,
			Message:       fmt.Sprintf("capital increase of %s applied with sale", money.Round2(increase.Amount)),
			CorrelationID: correlationID,
			At:            time.Now().UTC(),
			InvestmentUpdated: &types.InvestmentUpdatedPayload{
				Contribution: money.Round2(increase.Amount),
			},
		}
		if err := s.appendInvestmentNarratives(ctx, monthlyRepo, investment.ID, period, types.NarrativeLog{tag}); err != nil {
			return nil, err
		}
	}

	investment.SaleAmount = decimal.NewNullDecimal(saleAmount)
	investment.AdminCostRate = adminRate
	if input.Title != nil {
		investment.Title = *input.Title
	}
	if input.Details != nil {
		investment.Details = *input.Details
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid investment status %q", *input.Status))
		}
		investment.Status = *input.Status
	}
	if err := investmentsRepo.Update(ctx, investment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update investment")
	}

	s.logg.Info(ctx, "sale distribution committed")
	return result, nil
}

func (s *service) allocate(ctx context.Context, participantsRepo participants.Repository, monthlyRepo ledgers.MonthlyRepository, agentsRepo ledgers.AgentRepository, summariesRepo ledgers.SummaryRepository, investment *models.Investment, participant *models.Participant, grossProfit, netProfit decimal.Decimal, period types.Period, correlationID uuid.UUID) (*Allocation, error) {
	// pre-sale capital basis; sharePercent is narrative display only, the
	// allocation divides on the raw stake so the split conserves net profit
	stake := participant.Amount
	if !stake.IsPositive() {
		return nil, nil
	}
	sharePercent := money.Share(stake, investment.AmountRequired)
	investorNetProfit := money.Prorate(netProfit, stake, investment.AmountRequired)

	participant.TotalDue = money.Round2(participant.TotalDue.Add(investorNetProfit))
	if s.shouldRollForward(participant, period) {
		rolled := participant.TotalDue
		if rolled.IsNegative() {
			rolled = decimal.Zero
		}
		participant.Amount = rolled
		now := time.Now().UTC()
		participant.AmountUpdatedAt = &now
	}
	if err := participantsRepo.Update(ctx, participant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update participant")
	}

	entry := types.NarrativeEntry{
		Type:          enums.NarrativeProfitDistributed,
		Message:       fmt.Sprintf("profit share %s distributed at %s%%", investorNetProfit, sharePercent),
		CorrelationID: correlationID,
		At:            time.Now().UTC(),
		ProfitDistributed: &types.ProfitDistributedPayload{
			SharePercent: sharePercent,
			Amount:       investorNetProfit,
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
			Profit:          investorNetProfit,
			MonthlyTotalDue: investorNetProfit,
			Logs:            types.NarrativeLog{entry},
		}
		ledgers.ReconcileMonthly(ledger)
		if err := monthlyRepo.Create(ctx, ledger); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create monthly ledger")
		}
	} else {
		ledger.Profit = money.Round2(ledger.Profit.Add(investorNetProfit))
		ledger.MonthlyTotalDue = money.Round2(ledger.MonthlyTotalDue.Add(investorNetProfit))
		ledger.Logs = append(ledger.Logs, entry)
		ledgers.ReconcileMonthly(ledger)
		if err := monthlyRepo.Update(ctx, ledger); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update monthly ledger")
		}
	}

	allocation := &Allocation{
		InvestorID:        participant.InvestorID,
		SharePercent:      sharePercent,
		InvestorNetProfit: investorNetProfit,
	}

	if participant.AgentCommissionRate.IsPositive() {
		agent, err := s.identities.AgentFor(ctx, participant.InvestorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return allocation, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve agent")
		}
		if agent == nil {
			return allocation, nil
		}
		commission, err := s.accrueCommission(ctx, agentsRepo, summariesRepo, investment, participant, agent, grossProfit, stake, sharePercent, investorNetProfit, period, correlationID)
		if err != nil {
			return nil, err
		}
		if commission.IsPositive() {
			allocation.AgentID = &agent.ID
			allocation.Commission = commission
		}
	}
	return allocation, nil
}

// shouldRollForward reports whether the compounding principal roll-up may run:
// at most once per period, and never in the period the stake was created or
// last amount-updated.
func (s *service) shouldRollForward(participant *models.Participant, period types.Period) bool {
	if types.PeriodOf(participant.CreatedAt) == period {
		return false
	}
	if participant.AmountUpdatedAt != nil && types.PeriodOf(*participant.AmountUpdatedAt) == period {
		return false
	}
	return true
}

func (s *service) accrueCommission(ctx context.Context, agentsRepo ledgers.AgentRepository, summariesRepo ledgers.SummaryRepository, investment *models.Investment, participant *models.Participant, agent *models.User, grossProfit, stake, sharePercent, investorNetProfit decimal.Decimal, period types.Period, correlationID uuid.UUID) (decimal.Decimal, error) {
	// commission taxes the admin-cost slice attributable to this stake, not
	// the investor's net profit
	commissionBase := money.Round2(money.Prorate(grossProfit, stake, investment.AmountRequired).Sub(investorNetProfit))
	commission := money.Percent(commissionBase, participant.AgentCommissionRate)
	if !commission.IsPositive() {
		return decimal.Zero, nil
	}

	entry := types.NarrativeEntry{
		Type:          enums.NarrativeCommissionCalculated,
		Message:       fmt.Sprintf("commission %s computed on base %s at %s%%", commission, commissionBase, participant.AgentCommissionRate),
		CorrelationID: correlationID,
		At:            time.Now().UTC(),
		CommissionCalculated: &types.CommissionCalculatedPayload{
			AgentID:        agent.ID,
			SharePercent:   sharePercent,
			CommissionBase: commissionBase,
			RatePercent:    participant.AgentCommissionRate,
			Commission:     commission,
		},
	}

	record, err := agentsRepo.FindByScope(ctx, period, agent.ID, investment.ID, participant.InvestorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent ledger")
		}
		record = &models.AgentTransaction{
			Period:        period,
			AgentID:       agent.ID,
			InvestmentID:  investment.ID,
			InvestorID:    participant.InvestorID,
			Profit:        investorNetProfit,
			CommissionDue: commission,
			Logs:          types.NarrativeLog{entry},
		}
		ledgers.ReconcileAgent(record)
		if err := agentsRepo.Create(ctx, record); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent ledger")
		}
	} else {
		record.Profit = money.Round2(record.Profit.Add(investorNetProfit))
		record.CommissionDue = money.Round2(record.CommissionDue.Add(commission))
		record.Logs = append(record.Logs, entry)
		ledgers.ReconcileAgent(record)
		if err := agentsRepo.Update(ctx, record); err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent ledger")
		}
	}

	if _, err := summariesRepo.ApplyDelta(ctx, agent.ID, participant.InvestorID, commission, decimal.Zero); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update commission summary")
	}
	return commission, nil
}

func (s *service) appendInvestmentNarratives(ctx context.Context, monthlyRepo ledgers.MonthlyRepository, investmentID uuid.UUID, period types.Period, entries types.NarrativeLog) error {
	ledger, err := monthlyRepo.FindByScope(ctx, period, investmentID, nil)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment-wide ledger")
		}
		ledger = &models.MonthlyTransaction{
			Period:       period,
			InvestmentID: investmentID,
			Status:       enums.LedgerStatusDue,
			Logs:         entries,
		}
		if err := monthlyRepo.Create(ctx, ledger); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create investment-wide ledger")
		}
		return nil
	}
	ledger.Logs = append(ledger.Logs, entries...)
	if err := monthlyRepo.Update(ctx, ledger); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update investment-wide ledger")
	}
	return nil
}
