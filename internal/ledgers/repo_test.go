package ledgers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/investrahq/investra-backend/pkg/db/models"
	"github.com/investrahq/investra-backend/pkg/enums"
	"github.com/investrahq/investra-backend/pkg/types"
)

func mustPeriod(t *testing.T, value string) types.Period {
	t.Helper()

	p, err := types.ParsePeriod(value)
	require.NoError(t, err)
	return p
}

func setupLedgersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	monthlyTransactions := `
CREATE TABLE IF NOT EXISTS monthly_transactions (
  id TEXT PRIMARY KEY,
  period TEXT NOT NULL,
  investment_id TEXT NOT NULL,
  investor_id TEXT,
  profit NUMERIC NOT NULL DEFAULT 0,
  monthly_total_due NUMERIC NOT NULL DEFAULT 0,
  monthly_total_paid NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'due',
  payment_log TEXT,
  logs TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	agentTransactions := `
CREATE TABLE IF NOT EXISTS agent_transactions (
  id TEXT PRIMARY KEY,
  period TEXT NOT NULL,
  agent_id TEXT NOT NULL,
  investment_id TEXT NOT NULL,
  investor_id TEXT NOT NULL,
  profit NUMERIC NOT NULL DEFAULT 0,
  commission_due NUMERIC NOT NULL DEFAULT 0,
  commission_paid NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'due',
  payment_log TEXT,
  logs TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	commissionSummaries := `
CREATE TABLE IF NOT EXISTS agent_commission_summaries (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  investor_id TEXT NOT NULL,
  total_commission_due NUMERIC NOT NULL DEFAULT 0,
  total_commission_paid NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(monthlyTransactions).Error)
	require.NoError(t, db.Exec(agentTransactions).Error)
	require.NoError(t, db.Exec(commissionSummaries).Error)
	return db
}

func createMonthly(t *testing.T, db *gorm.DB, period types.Period, investmentID uuid.UUID, investorID *uuid.UUID, due string) *models.MonthlyTransaction {
	t.Helper()

	record := &models.MonthlyTransaction{
		ID:              uuid.New(),
		Period:          period,
		InvestmentID:    investmentID,
		InvestorID:      investorID,
		MonthlyTotalDue: dec(due),
		Status:          enums.LedgerStatusDue,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestMonthlyRepositoryFindByScope(t *testing.T) {
	db := setupLedgersTestDB(t)
	repo := NewMonthlyRepository(db)

	investmentID := uuid.New()
	investorID := uuid.New()
	period := mustPeriod(t, "2026-04")

	investorRecord := createMonthly(t, db, period, investmentID, &investorID, "150.00")
	wideRecord := createMonthly(t, db, period, investmentID, nil, "0")

	found, err := repo.FindByScope(context.Background(), period, investmentID, &investorID)
	require.NoError(t, err)
	assert.Equal(t, investorRecord.ID, found.ID)
	assert.True(t, found.MonthlyTotalDue.Equal(dec("150.00")))

	wide, err := repo.FindByScope(context.Background(), period, investmentID, nil)
	require.NoError(t, err)
	assert.Equal(t, wideRecord.ID, wide.ID)
	assert.Nil(t, wide.InvestorID)

	_, err = repo.FindByScope(context.Background(), mustPeriod(t, "2026-05"), investmentID, &investorID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsForScope(context.Background(), period, investmentID, &investorID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForScope(context.Background(), period, investmentID, &uuid.UUID{})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMonthlyRepositoryListByParticipantOrdersByPeriod(t *testing.T) {
	db := setupLedgersTestDB(t)
	repo := NewMonthlyRepository(db)

	investmentID := uuid.New()
	investorID := uuid.New()
	otherInvestor := uuid.New()

	createMonthly(t, db, mustPeriod(t, "2026-06"), investmentID, &investorID, "30")
	createMonthly(t, db, mustPeriod(t, "2026-04"), investmentID, &investorID, "10")
	createMonthly(t, db, mustPeriod(t, "2026-05"), investmentID, &investorID, "20")
	createMonthly(t, db, mustPeriod(t, "2026-04"), investmentID, &otherInvestor, "99")
	createMonthly(t, db, mustPeriod(t, "2026-04"), investmentID, nil, "0")

	records, err := repo.ListByParticipant(context.Background(), investmentID, investorID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-04", records[0].Period.String())
	assert.Equal(t, "2026-05", records[1].Period.String())
	assert.Equal(t, "2026-06", records[2].Period.String())
}

func TestMonthlyRepositoryRoundTripsLogs(t *testing.T) {
	db := setupLedgersTestDB(t)
	repo := NewMonthlyRepository(db)

	investorID := uuid.New()
	record := &models.MonthlyTransaction{
		ID:              uuid.New(),
		Period:          mustPeriod(t, "2026-04"),
		InvestmentID:    uuid.New(),
		InvestorID:      &investorID,
		MonthlyTotalDue: dec("100"),
		Status:          enums.LedgerStatusDue,
		PaymentLog: types.PaymentLog{{
			Type:      enums.PaymentEntryInvestment,
			DueAmount: dec("100"),
			Status:    enums.LedgerStatusDue,
		}},
	}
	require.NoError(t, repo.Create(context.Background(), record))

	found, err := repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.Len(t, found.PaymentLog, 1)
	assert.Equal(t, enums.PaymentEntryInvestment, found.PaymentLog[0].Type)
	assert.True(t, found.PaymentLog[0].DueAmount.Equal(dec("100")))
}

func TestSummaryRepositoryFindByPair(t *testing.T) {
	db := setupLedgersTestDB(t)
	repo := NewSummaryRepository(db)

	agentID := uuid.New()
	investorID := uuid.New()
	summary := &models.AgentCommissionSummary{
		ID:                  uuid.New(),
		AgentID:             agentID,
		InvestorID:          investorID,
		TotalCommissionDue:  dec("60.01"),
		TotalCommissionPaid: decimal.Zero,
	}
	require.NoError(t, db.Create(summary).Error)

	found, err := repo.FindByPair(context.Background(), agentID, investorID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, found.ID)
	assert.True(t, found.TotalCommissionDue.Equal(dec("60.01")))

	_, err = repo.FindByPair(context.Background(), agentID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
