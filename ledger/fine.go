package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// FINE POLICY - Late-return fines
// =============================================================================

// FinePolicy assesses a flat daily fine for late returns. Amounts use
// decimal arithmetic so a 0.10/day rate never accumulates float dust.
type FinePolicy struct {
	DailyRate decimal.Decimal
}

// DefaultFinePolicy charges nothing. Schools that fine late returns
// construct their own policy with a positive rate.
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{DailyRate: decimal.Zero}
}

// Assess returns the fine owed on a loan record as of today. Closed loans
// are charged for the days between due date and return date; open overdue
// loans accrue against today. On-time loans owe nothing.
func (p FinePolicy) Assess(rec LoanRecord, today Date) decimal.Decimal {
	if p.DailyRate.IsZero() || !rec.Overdue {
		return decimal.Zero
	}
	reference := today
	if rec.ReturnDate != nil {
		reference = *rec.ReturnDate
	}
	lateDays := DaysBetween(reference, rec.DueDate)
	if lateDays <= 0 {
		// Overdue via explicit warn flag but dates do not show it; charge
		// the minimum of one day.
		lateDays = 1
	}
	return p.DailyRate.Mul(decimal.NewFromInt(int64(lateDays)))
}
