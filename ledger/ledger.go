/*
ledger.go - The serialized write path

Appending a returned transaction is a read-modify-write: load the pair's
log, check the outstanding balance, find the loan being closed, then
append. Two concurrent returns against one outstanding taken would both
pass the balance check if they interleaved, so the whole sequence runs
under a single append lock. Write volume is low; a global lock is enough.

Reads never take the lock - every derivation is a pure function of a log
snapshot.
*/
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// LEDGER - Owner of the append-only transaction log
// =============================================================================

// Ledger owns the write path of the transaction log.
type Ledger struct {
	store Store
	mu    sync.Mutex

	// Now supplies "today" for defaulted dates. Overridable in tests.
	Now func() Date
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, Now: Today}
}

// Append validates and persists one transaction. The date string defaults
// to today when empty and must otherwise be a strict YYYY-MM-DD.
//
// A taken transaction is always accepted; its date is the due date the
// caller computed (normally via DeadlineEngine). Copy availability is the
// book catalogue's concern, not the ledger's.
//
// A returned transaction is rejected with NoOutstandingLoanError when the
// pair's balance of taken minus returned is not positive. Otherwise the
// FIFO-oldest unmatched taken supplies the due-date reference, and the new
// transaction carries warn=true when it closes that loan late.
func (l *Ledger) Append(ctx context.Context, studentID, bookID int64, action Action, dateStr string) (Transaction, error) {
	if studentID <= 0 || bookID <= 0 {
		return Transaction{}, fmt.Errorf("studentId and bookId must be positive (got %d, %d)", studentID, bookID)
	}
	if !action.Valid() {
		return Transaction{}, fmt.Errorf("unknown action %q", action)
	}

	date := l.Now()
	if dateStr != "" {
		var err error
		date, err = ParseDate(dateStr)
		if err != nil {
			return Transaction{}, err
		}
	}

	tx := Transaction{
		StudentID: studentID,
		BookID:    bookID,
		Action:    action,
		Date:      date,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if action == ActionReturned {
		due, err := l.openLoanDue(ctx, studentID, bookID)
		if err != nil {
			return Transaction{}, err
		}
		tx.Warn = date.After(due)
	}

	return l.store.Append(ctx, tx)
}

// RecordTaken appends a taken transaction with an already-validated due date.
func (l *Ledger) RecordTaken(ctx context.Context, studentID, bookID int64, due Date) (Transaction, error) {
	return l.Append(ctx, studentID, bookID, ActionTaken, due.String())
}

// RecordReturned appends a returned transaction dated today.
func (l *Ledger) RecordReturned(ctx context.Context, studentID, bookID int64) (Transaction, error) {
	return l.Append(ctx, studentID, bookID, ActionReturned, "")
}

// openLoanDue finds the due date of the FIFO-oldest unmatched taken for
// the pair, or reports NoOutstandingLoanError when nothing is open.
// Caller must hold l.mu.
func (l *Ledger) openLoanDue(ctx context.Context, studentID, bookID int64) (Date, error) {
	txs, err := l.store.LoadPair(ctx, studentID, bookID)
	if err != nil {
		return Date{}, err
	}

	balance := 0
	for _, tx := range txs {
		switch tx.Action {
		case ActionTaken:
			balance++
		case ActionReturned:
			balance--
		}
	}
	if balance <= 0 {
		return Date{}, &NoOutstandingLoanError{StudentID: studentID, BookID: bookID}
	}

	// Same FIFO walk as the derivation: the oldest unmatched taken is the
	// loan this return closes.
	ordered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Action.Valid() {
			ordered = append(ordered, tx)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return orderKey(ordered[i]) < orderKey(ordered[j]) })

	var queue []Transaction
	for _, tx := range ordered {
		switch tx.Action {
		case ActionTaken:
			queue = append(queue, tx)
		case ActionReturned:
			if len(queue) > 0 {
				queue = queue[1:]
			}
		}
	}
	if len(queue) == 0 {
		// Positive balance but no open taken means the log is malformed in
		// a way the walk filtered out. Treat as nothing outstanding.
		return Date{}, &NoOutstandingLoanError{StudentID: studentID, BookID: bookID}
	}
	return queue[0].Date, nil
}
