/*
dto.go - Data Transfer Objects for API requests and responses

Defines the JSON structures for API communication, decoupling the internal
domain model from the external contract. Field names follow the consumer's
camelCase convention.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients
  - *Response: complex response wrappers
*/
package api

import (
	"github.com/shelfmark/loan-engine/ledger"
	"github.com/shelfmark/loan-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	StudentID   int64  `json:"studentId"`
	Name        string `json:"name"`
	Grade       int    `json:"grade"`
	GradeLetter string `json:"gradeLetter"`
	Status      string `json:"status,omitempty"`
}

// CreateStudentRequest is the request to register a student.
type CreateStudentRequest struct {
	Name        string `json:"name"`
	Grade       int    `json:"grade"`
	GradeLetter string `json:"gradeLetter"`
}

// BookDTO represents a catalogue entry in API responses.
type BookDTO struct {
	BookID  int64  `json:"bookId"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Copies  int    `json:"copies"`
	OnHands int    `json:"onHands"`
}

// CreateBookRequest is the request to add a catalogue entry.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies int    `json:"copies"`
}

// CreateTransactionRequest is the payload for recording a loan event.
type CreateTransactionRequest struct {
	StudentID int64  `json:"studentId"`
	BookID    int64  `json:"bookId"`
	Action    string `json:"action"`
	Date      string `json:"date,omitempty"`
}

// TransactionDTO represents a stored ledger transaction.
type TransactionDTO struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"studentId"`
	BookID    int64  `json:"bookId"`
	Action    string `json:"action"`
	Date      string `json:"date"`
	Warn      bool   `json:"warn,omitempty"`
}

// LoanRecordDTO represents one derived taken->returned cycle.
type LoanRecordDTO struct {
	ID            int64   `json:"id"`
	StudentID     int64   `json:"studentId,omitempty"`
	BookID        int64   `json:"bookId"`
	Title         string  `json:"title,omitempty"`
	Author        string  `json:"author,omitempty"`
	DueDate       string  `json:"dueDate"`
	ReturnDate    *string `json:"returnDate,omitempty"`
	Overdue       bool    `json:"overdue"`
	Status        string  `json:"status"`
	StatusLabel   string  `json:"statusLabel"`
	ReferenceTime int64   `json:"referenceTime"`
	Warn          bool    `json:"warn,omitempty"`
	Fine          string  `json:"fine,omitempty"`
}

// HistoryResponse is the student-history read result.
type HistoryResponse struct {
	Student StudentDTO      `json:"student"`
	History []LoanRecordDTO `json:"history"`
	Summary HistorySummary  `json:"summary"`
}

// HistorySummary counts a student's loan records.
type HistorySummary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Overdue int `json:"overdue"`
}

// StudentStatusDTO badges a student for list views.
type StudentStatusDTO struct {
	StudentID    int64         `json:"studentId"`
	Status       string        `json:"status"`
	Priority     int           `json:"priority"`
	BooksOnHands map[int64]int `json:"booksOnHands"`
	OverdueBooks []int64       `json:"overdueBooks"`
}

// DeadlinePreviewRequest asks for a validated due date. Exactly one of
// duration, preset, or date should be set; today is optional and defaults
// to the server's current date.
type DeadlinePreviewRequest struct {
	Duration *DurationDTO `json:"duration,omitempty"`
	Preset   string       `json:"preset,omitempty"`
	Date     string       `json:"date,omitempty"`
	Today    string       `json:"today,omitempty"`
}

// DurationDTO is a requested loan length.
type DurationDTO struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// DeadlinePreviewResponse is the deadline-picker contract.
type DeadlinePreviewResponse struct {
	DueDate       string `json:"dueDateIso"`
	HumanReadable string `json:"humanReadableDate"`
	RemainingDays int    `json:"remainingDays"`
	Hint          string `json:"hint,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        tx.ID,
		StudentID: tx.StudentID,
		BookID:    tx.BookID,
		Action:    string(tx.Action),
		Date:      tx.Date.String(),
		Warn:      tx.Warn,
	}
}

func toStudentDTO(st sqlite.Student) StudentDTO {
	return StudentDTO{
		StudentID:   st.ID,
		Name:        st.Name,
		Grade:       st.Grade,
		GradeLetter: st.GradeLetter,
	}
}

func toLoanRecordDTO(rec ledger.LoanRecord, book *sqlite.Book, fine string) LoanRecordDTO {
	dto := LoanRecordDTO{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		BookID:        rec.BookID,
		DueDate:       rec.DueDate.String(),
		Overdue:       rec.Overdue,
		Status:        string(rec.Status),
		StatusLabel:   rec.Status.Label(),
		ReferenceTime: rec.ReferenceTime,
		Warn:          rec.Warn,
		Fine:          fine,
	}
	if rec.ReturnDate != nil {
		s := rec.ReturnDate.String()
		dto.ReturnDate = &s
	}
	if book != nil {
		dto.Title = book.Title
		dto.Author = book.Author
	}
	return dto
}
