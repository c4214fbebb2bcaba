// Package storage provides abstractions for persisting a ledger session.
package storage

import (
	"context"

	"github.com/rjsplit/splitr/internal/models"
)

// Session is a whole-state snapshot of the ledger: every person in
// insertion order plus every expense. The ledger mutates by full
// replacement, so persistence does too — there is no per-row CRUD.
type Session struct {
	Users    []string
	Expenses []models.Expense
}

// SessionStore persists and restores session snapshots. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
type SessionStore interface {
	// Save replaces the persisted snapshot with the given session.
	Save(ctx context.Context, session *Session) error

	// Load returns the persisted snapshot. A store that has never been
	// saved to returns an empty session, not an error.
	Load(ctx context.Context) (*Session, error)

	// Close releases any resources held by the store.
	Close() error
}
