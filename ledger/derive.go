/*
derive.go - FIFO pairing of taken/returned events into loan records

This is the read side of the ledger. It is a pure function of a log
snapshot: no caches, no shared state, safe to call from any number of
readers concurrently. History, status badges, and statistics all start
from the records produced here.

PAIRING POLICY:
  The data model carries no per-copy identity, so when a student holds
  several copies of the same book there is no way to know which physical
  copy a return refers to. First-open-first-closed is the deterministic
  tie-break: a returned event always closes the oldest outstanding taken
  event for its (student, book) pair.
*/
package ledger

import "sort"

// =============================================================================
// DERIVATION - Transactions -> LoanRecords
// =============================================================================

// DeriveLoanRecords pairs taken/returned events into loan records for the
// given filter (zero studentID or bookID matches everything). Records come
// back most-recent-first by reference time. Malformed rows - nonpositive
// student or book IDs, unknown actions - are skipped, never fatal.
func DeriveLoanRecords(txs []Transaction, studentID, bookID int64, today Date) []LoanRecord {
	filtered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.StudentID <= 0 || tx.BookID <= 0 || !tx.Action.Valid() {
			continue
		}
		if studentID != 0 && tx.StudentID != studentID {
			continue
		}
		if bookID != 0 && tx.BookID != bookID {
			continue
		}
		filtered = append(filtered, tx)
	}

	// Ascending by order key; stable, so equal keys keep insertion order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return orderKey(filtered[i]) < orderKey(filtered[j])
	})

	type pairKey struct {
		StudentID int64
		BookID    int64
	}

	// FIFO queue of unmatched taken events per pair.
	open := make(map[pairKey][]Transaction)
	var openOrder []pairKey // preserves first-seen order for leftover takens
	var records []LoanRecord

	for _, tx := range filtered {
		k := pairKey{StudentID: tx.StudentID, BookID: tx.BookID}
		switch tx.Action {
		case ActionTaken:
			if _, seen := open[k]; !seen {
				openOrder = append(openOrder, k)
			}
			open[k] = append(open[k], tx)
		case ActionReturned:
			queue := open[k]
			if len(queue) == 0 {
				// Nothing outstanding: the write path rejects these at
				// insertion time, so an orphan here is legacy data. Skip.
				continue
			}
			taken := queue[0]
			open[k] = queue[1:]
			records = append(records, closeRecord(taken, tx))
		}
	}

	// Whatever is still queued is an open loan.
	for _, k := range openOrder {
		for _, taken := range open[k] {
			records = append(records, openRecord(taken, today))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReferenceTime > records[j].ReferenceTime
	})
	return records
}

// orderKey sorts transactions into creation order: the monotonic ID when
// assigned, else the date timestamp, else 0.
func orderKey(tx Transaction) int64 {
	if tx.ID > 0 {
		return tx.ID
	}
	if !tx.Date.IsZero() {
		return tx.Date.Unix()
	}
	return 0
}

func closeRecord(taken, returned Transaction) LoanRecord {
	returnDate := returned.Date
	overdue := returned.Warn || returnDate.After(taken.Date)
	status := StatusReturnedOnTime
	if overdue {
		status = StatusReturnedLate
	}
	return LoanRecord{
		ID:            taken.ID,
		StudentID:     taken.StudentID,
		BookID:        taken.BookID,
		DueDate:       taken.Date,
		ReturnDate:    &returnDate,
		Overdue:       overdue,
		Status:        status,
		Warn:          returned.Warn,
		ReferenceTime: referenceTime(taken.Date, &returnDate),
	}
}

func openRecord(taken Transaction, today Date) LoanRecord {
	overdue := taken.Date.Before(today)
	status := StatusOnHands
	if overdue {
		status = StatusOverdue
	}
	return LoanRecord{
		ID:            taken.ID,
		StudentID:     taken.StudentID,
		BookID:        taken.BookID,
		DueDate:       taken.Date,
		Overdue:       overdue,
		Status:        status,
		ReferenceTime: referenceTime(taken.Date, nil),
	}
}

func referenceTime(due Date, returned *Date) int64 {
	if returned != nil && !returned.IsZero() {
		return returned.Unix()
	}
	if !due.IsZero() {
		return due.Unix()
	}
	return 0
}
