/*
handlers.go - HTTP API handlers for the loan engine

PURPOSE:
  Exposes the ledger via REST. Handles HTTP request/response and JSON
  serialization, delegates everything else to the ledger package.

ENDPOINTS:
  Transactions:
    POST   /api/transactions            Record a taken/returned event
    GET    /api/transactions            Raw ledger (optional filters)
    GET    /api/loans                   Derived loan records (optional filters)

  Students:
    GET    /api/students                List students, problem cases first
    POST   /api/students                Register student
    GET    /api/students/{id}           Get student
    GET    /api/students/{id}/history   Loan history + summary
    GET    /api/students/{id}/status    Status badge + holdings

  Books:
    GET    /api/books                   List catalogue with net holdings
    POST   /api/books                   Add catalogue entry
    GET    /api/books/{id}              Get book

  Other:
    GET    /api/stats                   Collection summary counters
    POST   /api/deadline/preview        Validate a due date before lending

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors (bad dates, durations, horizons)
  - 404: unknown student/book
  - 409: conflict with ledger state (nothing outstanding to return)
  - 500: internal errors
*/
package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfmark/loan-engine/ledger"
	"github.com/shelfmark/loan-engine/store/sqlite"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *ledger.Ledger
	Engine *ledger.DeadlineEngine
	Fines  ledger.FinePolicy

	// Now supplies "today" for derivations. Overridable in tests.
	Now func() ledger.Date
}

// NewHandler creates a handler wired to the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:  store,
		Ledger: ledger.NewLedger(store),
		Engine: ledger.NewDeadlineEngine(ledger.DefaultCalendar()),
		Fines:  ledger.DefaultFinePolicy(),
		Now:    ledger.Today,
	}
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// CreateTransaction records a taken or returned event.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StudentID <= 0 || req.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "studentId and bookId must be positive", nil)
		return
	}
	action := ledger.Action(req.Action)
	if !action.Valid() {
		writeError(w, http.StatusBadRequest, `action must be "taken" or "returned"`, nil)
		return
	}

	tx, err := h.Ledger.Append(r.Context(), req.StudentID, req.BookID, action, req.Date)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// ListTransactions returns the raw ledger, optionally filtered.
// GET /api/transactions?studentId=&bookId=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	studentID := queryID(r, "studentId")
	bookID := queryID(r, "bookId")

	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		if studentID != 0 && tx.StudentID != studentID {
			continue
		}
		if bookID != 0 && tx.BookID != bookID {
			continue
		}
		dtos = append(dtos, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListLoans returns derived loan records, most recent first.
// GET /api/loans?studentId=&bookId=
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	studentID := queryID(r, "studentId")
	bookID := queryID(r, "bookId")

	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	books, err := h.bookIndex(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load books", err)
		return
	}

	today := h.Now()
	records := ledger.DeriveLoanRecords(txs, studentID, bookID, today)
	dtos := make([]LoanRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toLoanRecordDTO(rec, books[rec.BookID], h.fineFor(rec, today)))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students with their status badge, problem cases
// first (the status enum is a total priority ranking).
// GET /api/students
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}
	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	today := h.Now()
	type ranked struct {
		dto      StudentDTO
		priority ledger.StudentStatus
	}
	rankedStudents := make([]ranked, 0, len(students))
	for _, st := range students {
		status := ledger.StudentStatusOf(txs, st.ID, today)
		dto := toStudentDTO(st)
		dto.Status = status.String()
		rankedStudents = append(rankedStudents, ranked{dto: dto, priority: status})
	}
	sort.SliceStable(rankedStudents, func(i, j int) bool {
		return rankedStudents[i].priority < rankedStudents[j].priority
	})

	dtos := make([]StudentDTO, len(rankedStudents))
	for i, rs := range rankedStudents {
		dtos[i] = rs.dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent registers a student.
// POST /api/students
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	st, err := h.Store.SaveStudent(r.Context(), sqlite.Student{
		Name:        req.Name,
		Grade:       req.Grade,
		GradeLetter: req.GradeLetter,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create student", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(st))
}

// GetStudent returns a single student.
// GET /api/students/{id}
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	st, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(*st))
}

// GetStudentHistory returns the student's loan records with a summary.
// GET /api/students/{id}/history
func (h *Handler) GetStudentHistory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	st, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	txs, err := h.Store.LoadByStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	books, err := h.bookIndex(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load books", err)
		return
	}

	today := h.Now()
	records := ledger.DeriveLoanRecords(txs, id, 0, today)

	resp := HistoryResponse{
		Student: toStudentDTO(*st),
		History: make([]LoanRecordDTO, 0, len(records)),
	}
	for _, rec := range records {
		resp.History = append(resp.History, toLoanRecordDTO(rec, books[rec.BookID], h.fineFor(rec, today)))
		resp.Summary.Total++
		if rec.Open() {
			resp.Summary.Active++
			if rec.Overdue {
				resp.Summary.Overdue++
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStudentStatus returns the student's badge and holdings.
// GET /api/students/{id}/status
func (h *Handler) GetStudentStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	st, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	txs, err := h.Store.LoadByStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	today := h.Now()
	status := ledger.StudentStatusOf(txs, id, today)
	overdue := ledger.OverdueBooks(txs, id, today)
	if overdue == nil {
		overdue = []int64{}
	}
	writeJSON(w, http.StatusOK, StudentStatusDTO{
		StudentID:    id,
		Status:       status.String(),
		Priority:     int(status),
		BooksOnHands: ledger.BooksOnHands(txs, id),
		OverdueBooks: overdue,
	})
}

// =============================================================================
// BOOK HANDLERS
// =============================================================================

// ListBooks returns the catalogue with net holdings per book.
// GET /api/books
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Store.ListBooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list books", err)
		return
	}
	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	onHands := netHoldings(txs)
	dtos := make([]BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, BookDTO{
			BookID:  b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Copies:  b.Copies,
			OnHands: onHands[b.ID],
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBook adds a catalogue entry.
// POST /api/books
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}
	if req.Copies <= 0 {
		req.Copies = 1
	}

	b, err := h.Store.SaveBook(r.Context(), sqlite.Book{
		Title:  req.Title,
		Author: req.Author,
		Copies: req.Copies,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create book", err)
		return
	}
	writeJSON(w, http.StatusCreated, BookDTO{
		BookID: b.ID,
		Title:  b.Title,
		Author: b.Author,
		Copies: b.Copies,
	})
}

// GetBook returns a single catalogue entry with its net holdings.
// GET /api/books/{id}
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b, err := h.Store.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get book", err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Book not found", nil)
		return
	}

	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, BookDTO{
		BookID:  b.ID,
		Title:   b.Title,
		Author:  b.Author,
		Copies:  b.Copies,
		OnHands: netHoldings(txs)[b.ID],
	})
}

// =============================================================================
// STATS HANDLER
// =============================================================================

// GetStats returns the collection summary counters.
// GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.CountBooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count books", err)
		return
	}
	txs, err := h.Store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.AggregateStats(txs, total, h.Now()))
}

// =============================================================================
// DEADLINE HANDLER
// =============================================================================

// PreviewDeadline validates a requested due date before a loan is created.
// POST /api/deadline/preview
func (h *Handler) PreviewDeadline(w http.ResponseWriter, r *http.Request) {
	var req DeadlinePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	today := h.Now()
	if req.Today != "" {
		var err error
		today, err = ledger.ParseDate(req.Today)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
	}

	var (
		deadline ledger.Deadline
		err      error
	)
	switch {
	case req.Date != "":
		var picked ledger.Date
		picked, err = ledger.ParseDate(req.Date)
		if err == nil {
			deadline, err = h.Engine.FromDate(today, picked)
		}
	case req.Preset != "":
		deadline, err = h.Engine.FromPreset(today, ledger.Preset(req.Preset))
	case req.Duration != nil:
		deadline, err = h.Engine.FromDuration(today, ledger.Duration{
			Amount: req.Duration.Amount,
			Unit:   ledger.Unit(req.Duration.Unit),
		})
	default:
		writeError(w, http.StatusBadRequest, "one of duration, preset, or date is required", nil)
		return
	}
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeadlinePreviewResponse{
		DueDate:       deadline.Due.String(),
		HumanReadable: deadline.DueAt.Format("Mon, 02 Jan 2006"),
		RemainingDays: deadline.RemainingDays,
		Hint:          deadline.Hint,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) bookIndex(r *http.Request) (map[int64]*sqlite.Book, error) {
	books, err := h.Store.ListBooks(r.Context())
	if err != nil {
		return nil, err
	}
	index := make(map[int64]*sqlite.Book, len(books))
	for i := range books {
		index[books[i].ID] = &books[i]
	}
	return index, nil
}

func (h *Handler) fineFor(rec ledger.LoanRecord, today ledger.Date) string {
	if h.Fines.DailyRate.IsZero() {
		return ""
	}
	return h.Fines.Assess(rec, today).StringFixed(2)
}

// netHoldings is the clamped taken-minus-returned count per book.
func netHoldings(txs []ledger.Transaction) map[int64]int {
	net := make(map[int64]int)
	for _, tx := range txs {
		switch tx.Action {
		case ledger.ActionTaken:
			net[tx.BookID]++
		case ledger.ActionReturned:
			net[tx.BookID]--
		}
	}
	for id, n := range net {
		if n < 0 {
			net[id] = 0
		}
	}
	return net
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func queryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps domain errors onto HTTP statuses and stable codes.
func writeLedgerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsConflict(err):
		status = http.StatusConflict
	case ledger.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, ledger.ErrDeadlineTooFar):
		return "deadline_too_far"
	case errors.Is(err, ledger.ErrDeadlineInPast):
		return "deadline_in_past"
	case errors.Is(err, ledger.ErrInvalidDateFormat):
		return "invalid_date_format"
	case errors.Is(err, ledger.ErrNoOutstandingLoan):
		return "no_outstanding_loan"
	default:
		return ""
	}
}
