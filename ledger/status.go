/*
status.go - Per-student aggregate status

Badges a student for list views and sorting. Deliberately simpler than the
FIFO derivation in derive.go: only counts matter here, so holdings are a
plain running net of taken minus returned per book.
*/
package ledger

import "sort"

// =============================================================================
// STATUS CLASSIFIER
// =============================================================================

// BooksOnHands returns the net holding count per book for a student:
// #taken - #returned in chronological order. Books with a net of zero or
// less are dropped.
func BooksOnHands(txs []Transaction, studentID int64) map[int64]int {
	net := make(map[int64]int)
	for _, tx := range chronological(txs, studentID) {
		switch tx.Action {
		case ActionTaken:
			net[tx.BookID]++
		case ActionReturned:
			net[tx.BookID]--
		}
	}
	for bookID, n := range net {
		if n <= 0 {
			delete(net, bookID)
		}
	}
	return net
}

// OverdueBooks returns the on-hands books whose latest taken event has a
// due date strictly before today.
func OverdueBooks(txs []Transaction, studentID int64, today Date) []int64 {
	onHands := BooksOnHands(txs, studentID)
	latest := latestTakenDates(txs, studentID)

	var overdue []int64
	for bookID := range onHands {
		if due, ok := latest[bookID]; ok && due.Before(today) {
			overdue = append(overdue, bookID)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i] < overdue[j] })
	return overdue
}

// StudentStatusOf classifies a student by their open loans. The result is
// a total priority ranking: overdue beats due-today beats on-hands beats ok,
// regardless of how many quiet loans sit alongside a problem one.
func StudentStatusOf(txs []Transaction, studentID int64, today Date) StudentStatus {
	onHands := BooksOnHands(txs, studentID)
	if len(onHands) == 0 {
		return StudentOk
	}
	latest := latestTakenDates(txs, studentID)
	for bookID := range onHands {
		if due, ok := latest[bookID]; ok && due.Before(today) {
			return StudentOverdue
		}
	}
	for bookID := range onHands {
		if due, ok := latest[bookID]; ok && due.Equal(today) {
			return StudentDueToday
		}
	}
	return StudentOnHands
}

// chronological returns the student's well-formed transactions in creation
// order.
func chronological(txs []Transaction, studentID int64) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.StudentID != studentID || tx.BookID <= 0 || !tx.Action.Valid() {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return orderKey(out[i]) < orderKey(out[j]) })
	return out
}

// latestTakenDates finds each book's most recent taken due date, by date
// with ties broken by the later event.
func latestTakenDates(txs []Transaction, studentID int64) map[int64]Date {
	latest := make(map[int64]Date)
	for _, tx := range chronological(txs, studentID) {
		if tx.Action != ActionTaken {
			continue
		}
		if prev, ok := latest[tx.BookID]; !ok || tx.Date.AfterOrEqual(prev) {
			latest[tx.BookID] = tx.Date
		}
	}
	return latest
}
