/*
store.go - Persistence interface for the transaction log

The Store persists the append-only ledger. There is no Update and no
Delete: corrections never happen, because the ledger records what
physically occurred at the counter.

IMPLEMENTATIONS:
  - store/memory.go: in-memory, for tests and dev
  - store/sqlite (top-level): production SQLite, also holds the student
    and book catalogues
*/
package ledger

import "context"

// Store handles persistence of ledger transactions.
// IMPORTANT: Store is APPEND-ONLY. No Update, No Delete. Ever.
type Store interface {
	// Append persists a transaction and assigns its monotonically
	// increasing ID. This is the ONLY write operation.
	Append(ctx context.Context, tx Transaction) (Transaction, error)

	// Load returns the full transaction log in insertion order.
	Load(ctx context.Context) ([]Transaction, error)

	// LoadPair returns all transactions for one (student, book) pair in
	// insertion order. Used by the write path's balance check.
	LoadPair(ctx context.Context, studentID, bookID int64) ([]Transaction, error)
}
