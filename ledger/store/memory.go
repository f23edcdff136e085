// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/shelfmark/loan-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions []ledger.Transaction
	nextID       int64
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append adds a single transaction and assigns its ID. Append-only.
func (m *Memory) Append(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = m.nextID
	m.nextID++
	m.transactions = append(m.transactions, tx)
	return tx, nil
}

func (m *Memory) Load(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Transaction, len(m.transactions))
	copy(result, m.transactions)
	return result, nil
}

func (m *Memory) LoadPair(_ context.Context, studentID, bookID int64) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.transactions {
		if tx.StudentID == studentID && tx.BookID == bookID {
			result = append(result, tx)
		}
	}
	return result, nil
}
