package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/loan-engine/ledger"
)

// =============================================================================
// NET HOLDINGS
// =============================================================================

func TestBooksOnHands_NetCount(t *testing.T) {
	txs := []ledger.Transaction{
		takenTx(1, 1, 10, "2024-01-10"),
		takenTx(2, 1, 10, "2024-01-11"),
		returnedTx(3, 1, 10, "2024-01-12"),
		takenTx(4, 1, 20, "2024-01-13"),
		takenTx(5, 1, 30, "2024-01-14"),
		returnedTx(6, 1, 30, "2024-01-15"),
		takenTx(7, 2, 40, "2024-01-16"), // another student, ignored
	}

	onHands := ledger.BooksOnHands(txs, 1)
	assert.Equal(t, map[int64]int{10: 1, 20: 1}, onHands)
}

func TestBooksOnHands_NegativeNetIsDropped(t *testing.T) {
	txs := []ledger.Transaction{
		returnedTx(1, 1, 10, "2024-01-10"),
		returnedTx(2, 1, 10, "2024-01-11"),
	}
	assert.Empty(t, ledger.BooksOnHands(txs, 1))
}

// =============================================================================
// OVERDUE BOOKS
// =============================================================================

func TestOverdueBooks_LatestTakenDecides(t *testing.T) {
	// GIVEN: book 10 was re-taken with a later due date after an early loan
	// WHEN: the latest due date has not passed
	// THEN: the book is not overdue

	today := mustDate("2024-02-01")
	txs := []ledger.Transaction{
		takenTx(1, 1, 10, "2024-01-05"),
		returnedTx(2, 1, 10, "2024-01-06"),
		takenTx(3, 1, 10, "2024-02-20"),
		takenTx(4, 1, 20, "2024-01-15"), // past due, still out
	}

	overdue := ledger.OverdueBooks(txs, 1, today)
	assert.Equal(t, []int64{20}, overdue)
}

func TestOverdueBooks_DueTodayIsNotOverdue(t *testing.T) {
	today := mustDate("2024-02-01")
	txs := []ledger.Transaction{takenTx(1, 1, 10, "2024-02-01")}

	assert.Empty(t, ledger.OverdueBooks(txs, 1, today))
}

// =============================================================================
// STUDENT STATUS PRIORITY
// =============================================================================

func TestStudentStatus_PriorityOrder(t *testing.T) {
	today := mustDate("2024-02-01")

	tests := []struct {
		name   string
		txs    []ledger.Transaction
		status ledger.StudentStatus
	}{
		{
			name:   "no transactions is ok",
			txs:    nil,
			status: ledger.StudentOk,
		},
		{
			name: "all returned is ok",
			txs: []ledger.Transaction{
				takenTx(1, 1, 10, "2024-01-10"),
				returnedTx(2, 1, 10, "2024-01-11"),
			},
			status: ledger.StudentOk,
		},
		{
			name:   "held book not yet due is on hands",
			txs:    []ledger.Transaction{takenTx(1, 1, 10, "2024-03-01")},
			status: ledger.StudentOnHands,
		},
		{
			name:   "held book due today is due today",
			txs:    []ledger.Transaction{takenTx(1, 1, 10, "2024-02-01")},
			status: ledger.StudentDueToday,
		},
		{
			name:   "held book past due is overdue",
			txs:    []ledger.Transaction{takenTx(1, 1, 10, "2024-01-10")},
			status: ledger.StudentOverdue,
		},
		{
			name: "one overdue book outranks everything else",
			txs: []ledger.Transaction{
				takenTx(1, 1, 10, "2024-01-10"), // overdue
				takenTx(2, 1, 20, "2024-02-01"), // due today
				takenTx(3, 1, 30, "2024-03-01"), // on hands
			},
			status: ledger.StudentOverdue,
		},
		{
			name: "due today outranks on hands",
			txs: []ledger.Transaction{
				takenTx(1, 1, 20, "2024-02-01"),
				takenTx(2, 1, 30, "2024-03-01"),
			},
			status: ledger.StudentDueToday,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, ledger.StudentStatusOf(tt.txs, 1, today))
		})
	}
}

func TestStudentStatus_RankingSortsProblemsFirst(t *testing.T) {
	require.Less(t, int(ledger.StudentOverdue), int(ledger.StudentDueToday))
	require.Less(t, int(ledger.StudentDueToday), int(ledger.StudentOnHands))
	require.Less(t, int(ledger.StudentOnHands), int(ledger.StudentOk))
}
