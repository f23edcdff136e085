/*
Package sqlite provides the SQLite-backed store for the loan engine.

PURPOSE:
  Persists the append-only transaction log plus the student and book
  catalogues the ledger references by ID. The derivation code never talks
  to this package directly - it receives log snapshots loaded here.

APPEND-ONLY ENFORCEMENT:
  The transactions table has no UPDATE and no DELETE path. The ledger
  records what happened at the counter; there is nothing to correct.

KEY TABLES:
  transactions: immutable taken/returned log (AUTOINCREMENT id doubles as
                the creation-order tiebreaker)
  students:     catalogue of borrowers
  books:        catalogue of titles

WAL MODE:
  SQLite is opened with WAL so readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./library.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  lgr := ledger.NewLedger(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shelfmark/loan-engine/ledger"
)

// Store implements ledger.Store and the catalogue collaborators on SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only loan ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL,
		action TEXT NOT NULL CHECK (action IN ('taken', 'returned')),
		date TEXT NOT NULL,
		warn INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_pair
		ON transactions(student_id, book_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_student
		ON transactions(student_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_book
		ON transactions(book_id);

	-- Students (borrower catalogue)
	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		grade INTEGER NOT NULL DEFAULT 0,
		grade_letter TEXT NOT NULL DEFAULT ''
	);

	-- Books (title catalogue)
	CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		copies INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE - ledger.Store implementation
// =============================================================================

// Append inserts a transaction and returns it with the assigned ID.
func (s *Store) Append(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (student_id, book_id, action, date, warn)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.StudentID, tx.BookID, string(tx.Action), tx.Date.String(), boolToInt(tx.Warn))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to append transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx.ID = id
	return tx, nil
}

// Load returns the full transaction log in insertion order.
func (s *Store) Load(ctx context.Context) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, student_id, book_id, action, date, warn FROM transactions ORDER BY id`)
}

// LoadPair returns all transactions for one (student, book) pair.
func (s *Store) LoadPair(ctx context.Context, studentID, bookID int64) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, student_id, book_id, action, date, warn FROM transactions
		 WHERE student_id = ? AND book_id = ? ORDER BY id`,
		studentID, bookID)
}

// LoadByStudent returns a student's transactions across all books.
func (s *Store) LoadByStudent(ctx context.Context, studentID int64) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, student_id, book_id, action, date, warn FROM transactions
		 WHERE student_id = ? ORDER BY id`,
		studentID)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var action, dateStr string
		var warn int
		if err := rows.Scan(&tx.ID, &tx.StudentID, &tx.BookID, &action, &dateStr, &warn); err != nil {
			return nil, err
		}
		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			// Malformed rows are excluded rather than failing the read;
			// derivation is total over well-formed input.
			continue
		}
		tx.Action = ledger.Action(action)
		tx.Warn = warn != 0
		tx.Date = date
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// STUDENT CATALOGUE
// =============================================================================

type Student struct {
	ID          int64
	Name        string
	Grade       int
	GradeLetter string
}

func (s *Store) SaveStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO students (name, grade, grade_letter) VALUES (?, ?, ?)`,
			st.Name, st.Grade, st.GradeLetter)
		if err != nil {
			return Student{}, err
		}
		st.ID, err = res.LastInsertId()
		return st, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, name, grade, grade_letter) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
		 grade = excluded.grade, grade_letter = excluded.grade_letter`,
		st.ID, st.Name, st.Grade, st.GradeLetter)
	return st, err
}

func (s *Store) GetStudent(ctx context.Context, id int64) (*Student, error) {
	var st Student
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, grade, grade_letter FROM students WHERE id = ?`, id).
		Scan(&st.ID, &st.Name, &st.Grade, &st.GradeLetter)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, grade, grade_letter FROM students ORDER BY grade, grade_letter, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Grade, &st.GradeLetter); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// =============================================================================
// BOOK CATALOGUE
// =============================================================================

type Book struct {
	ID     int64
	Title  string
	Author string
	Copies int
}

func (s *Store) SaveBook(ctx context.Context, b Book) (Book, error) {
	if b.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO books (title, author, copies) VALUES (?, ?, ?)`,
			b.Title, b.Author, b.Copies)
		if err != nil {
			return Book{}, err
		}
		b.ID, err = res.LastInsertId()
		return b, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, copies) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title,
		 author = excluded.author, copies = excluded.copies`,
		b.ID, b.Title, b.Author, b.Copies)
	return b, err
}

func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, copies FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Copies)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, copies FROM books ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Copies); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountBooks returns the catalogue size for the stats summary.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
