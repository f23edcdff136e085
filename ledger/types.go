package ledger

// =============================================================================
// TRANSACTION - Atomic ledger entry
// =============================================================================

// Action is what a transaction records: a book leaving or rejoining the
// collection.
type Action string

const (
	ActionTaken    Action = "taken"
	ActionReturned Action = "returned"
)

func (a Action) Valid() bool { return a == ActionTaken || a == ActionReturned }

// Transaction is one immutable entry in the append-only loan ledger.
//
// INVARIANTS:
//   - Never mutated or deleted once created.
//   - ID is assigned by the store, monotonically increasing, and doubles as
//     the creation-order tiebreaker during derivation.
//   - Date is the due date when Action is taken, the actual return date when
//     Action is returned.
type Transaction struct {
	ID        int64
	StudentID int64
	BookID    int64
	Action    Action
	Date      Date

	// Warn is set on a returned transaction whose date landed strictly
	// after the due date of the loan it closed.
	Warn bool
}

// =============================================================================
// LOAN RECORD - Derived taken->returned pairing
// =============================================================================

type LoanStatus string

const (
	StatusOnHands        LoanStatus = "on_hands"
	StatusOverdue        LoanStatus = "overdue"
	StatusReturnedOnTime LoanStatus = "returned_on_time"
	StatusReturnedLate   LoanStatus = "returned_late"
)

// Label returns the human-readable form used by history views.
func (s LoanStatus) Label() string {
	switch s {
	case StatusOnHands:
		return "On hands"
	case StatusOverdue:
		return "Overdue"
	case StatusReturnedOnTime:
		return "Returned on time"
	case StatusReturnedLate:
		return "Returned late"
	default:
		return string(s)
	}
}

// LoanRecord is one taken->returned cycle, or a still-open taken event,
// for a (student, book) pair. Records are recomputed from the full log on
// every query; nothing here is persisted.
type LoanRecord struct {
	ID        int64 // ID of the taken transaction
	StudentID int64
	BookID    int64

	DueDate    Date
	ReturnDate *Date
	Overdue    bool
	Status     LoanStatus
	Warn       bool

	// ReferenceTime orders records most-recent-first: the return timestamp
	// when present, else the due timestamp, else 0.
	ReferenceTime int64
}

// Open reports whether the book is still out.
func (r LoanRecord) Open() bool { return r.ReturnDate == nil }

// =============================================================================
// STUDENT STATUS - Aggregate badge with total priority ranking
// =============================================================================

// StudentStatus ranks a student's open loans. Lower values sort first, so
// student lists surface problems before quiet accounts.
type StudentStatus int

const (
	StudentOverdue  StudentStatus = iota // at least one overdue book
	StudentDueToday                      // a held book is due today
	StudentOnHands                       // holds books, none due yet
	StudentOk                            // holds nothing
)

func (s StudentStatus) String() string {
	switch s {
	case StudentOverdue:
		return "overdue"
	case StudentDueToday:
		return "due_today"
	case StudentOnHands:
		return "on_hands"
	default:
		return "ok"
	}
}
