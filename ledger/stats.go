package ledger

import "sort"

// =============================================================================
// STATS AGGREGATOR - Ledger + catalogue -> summary counters
// =============================================================================

// Stats is the collection summary shown on the dashboard.
type Stats struct {
	Total        int `json:"total"`
	OnHands      int `json:"onHands"`
	Overdue      int `json:"overdue"`
	NewThisMonth int `json:"newThisMonth"`
	WrittenOff   int `json:"writtenOff"`
}

// AggregateStats rolls the ledger and the catalogue size up into counters.
// NewThisMonth and WrittenOff are reserved: they depend on catalogue
// metadata this derivation does not own and always come back zero.
func AggregateStats(txs []Transaction, totalBooks int, today Date) Stats {
	stats := Stats{Total: totalBooks}

	// Net holdings per book, clamped at zero: a book cannot have negative
	// holdings even when ledger data is inconsistent.
	net := make(map[int64]int)
	for _, tx := range txs {
		if tx.StudentID <= 0 || tx.BookID <= 0 {
			continue
		}
		switch tx.Action {
		case ActionTaken:
			net[tx.BookID]++
		case ActionReturned:
			net[tx.BookID]--
		}
	}
	for _, n := range net {
		if n > 0 {
			stats.OnHands += n
		}
	}

	// Overdue pairs: most-recent event is a taken whose due date has passed.
	type pairKey struct {
		StudentID int64
		BookID    int64
	}
	lastByPair := make(map[pairKey]Transaction)
	ordered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.StudentID <= 0 || tx.BookID <= 0 || !tx.Action.Valid() {
			continue
		}
		ordered = append(ordered, tx)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return orderKey(ordered[i]) < orderKey(ordered[j]) })
	for _, tx := range ordered {
		lastByPair[pairKey{StudentID: tx.StudentID, BookID: tx.BookID}] = tx
	}
	for _, tx := range lastByPair {
		if tx.Action == ActionTaken && tx.Date.Before(today) {
			stats.Overdue++
		}
	}

	return stats
}
