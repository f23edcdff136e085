package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/loan-engine/ledger"
)

func TestFinePolicy_OnTimeLoanOwesNothing(t *testing.T) {
	policy := ledger.FinePolicy{DailyRate: decimal.RequireFromString("0.50")}
	today := mustDate("2024-02-01")

	records := ledger.DeriveLoanRecords([]ledger.Transaction{
		takenTx(1, 1, 1, "2024-01-20"),
		returnedTx(2, 1, 1, "2024-01-20"),
	}, 1, 1, today)
	require.Len(t, records, 1)

	assert.True(t, policy.Assess(records[0], today).IsZero())
}

func TestFinePolicy_LateReturnChargesPerDay(t *testing.T) {
	policy := ledger.FinePolicy{DailyRate: decimal.RequireFromString("0.50")}
	today := mustDate("2024-02-01")

	records := ledger.DeriveLoanRecords([]ledger.Transaction{
		takenTx(1, 1, 1, "2024-01-20"),
		returnedTx(2, 1, 1, "2024-01-25"), // 5 days late
	}, 1, 1, today)
	require.Len(t, records, 1)

	assert.Equal(t, "2.50", policy.Assess(records[0], today).StringFixed(2))
}

func TestFinePolicy_OpenOverdueAccruesAgainstToday(t *testing.T) {
	policy := ledger.FinePolicy{DailyRate: decimal.RequireFromString("0.10")}
	today := mustDate("2024-02-01")

	records := ledger.DeriveLoanRecords([]ledger.Transaction{
		takenTx(1, 1, 1, "2024-01-22"), // 10 days ago
	}, 1, 1, today)
	require.Len(t, records, 1)

	assert.Equal(t, "1.00", policy.Assess(records[0], today).StringFixed(2))
}

func TestFinePolicy_ZeroRateChargesNothing(t *testing.T) {
	policy := ledger.DefaultFinePolicy()
	today := mustDate("2024-02-01")

	records := ledger.DeriveLoanRecords([]ledger.Transaction{
		takenTx(1, 1, 1, "2024-01-01"),
	}, 1, 1, today)
	require.Len(t, records, 1)

	assert.True(t, policy.Assess(records[0], today).IsZero())
}
