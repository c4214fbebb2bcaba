// Package sqlite provides a SQLite-backed implementation of the
// storage.SessionStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/rjsplit/splitr/internal/models"
	"github.com/rjsplit/splitr/internal/storage"
)

const dateLayout = "2006-01-02"

// Ensure SessionStore implements storage.SessionStore
var _ storage.SessionStore = (*SessionStore)(nil)

// SessionStore implements storage.SessionStore using SQLite.
type SessionStore struct {
	db *sql.DB
}

// New creates a new SessionStore with the given database path. It creates
// the parent directories and runs migrations automatically.
func New(dbPath string) (*SessionStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Save replaces the persisted snapshot with the given session in a single
// transaction.
func (s *SessionStore) Save(ctx context.Context, session *storage.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expense_payments", "expense_participants", "expense_payers", "expenses", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, name := range session.Users {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (position, name) VALUES (?, ?)",
			i, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
	}

	for i := range session.Expenses {
		expense := &session.Expenses[i]
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expenses (id, position, description, category, amount, spent_on) VALUES (?, ?, ?, ?, ?, ?)",
			expense.ID, i, expense.Description, string(expense.Category),
			expense.Amount, expense.Date.Format(dateLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for j, name := range expense.Payers {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_payers (expense_id, position, name) VALUES (?, ?, ?)",
				expense.ID, j, name,
			)
			if err != nil {
				return fmt.Errorf("failed to insert payer: %w", err)
			}
		}

		for j, name := range expense.Participants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_participants (expense_id, position, name) VALUES (?, ?, ?)",
				expense.ID, j, name,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}

		for name, amount := range expense.PaymentAmounts {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_payments (expense_id, name, amount) VALUES (?, ?, ?)",
				expense.ID, name, amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert payment amount: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load returns the persisted snapshot. An empty database yields an empty
// session.
func (s *SessionStore) Load(ctx context.Context) (*storage.Session, error) {
	session := &storage.Session{}

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM users ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		session.Users = append(session.Users, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	expenseRows, err := s.db.QueryContext(ctx,
		"SELECT id, description, category, amount, spent_on FROM expenses ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	defer expenseRows.Close()

	for expenseRows.Next() {
		var expense models.Expense
		var category, spentOn string
		if err := expenseRows.Scan(&expense.ID, &expense.Description, &category, &expense.Amount, &spentOn); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Category = models.Category(category)
		expense.Date, err = time.Parse(dateLayout, spentOn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expense date %q: %w", spentOn, err)
		}
		session.Expenses = append(session.Expenses, expense)
	}
	if err := expenseRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range session.Expenses {
		expense := &session.Expenses[i]

		expense.Payers, err = s.loadNames(ctx, "expense_payers", expense.ID)
		if err != nil {
			return nil, err
		}
		expense.Participants, err = s.loadNames(ctx, "expense_participants", expense.ID)
		if err != nil {
			return nil, err
		}
		expense.PaymentAmounts, err = s.loadPayments(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
	}

	return session, nil
}

func (s *SessionStore) loadNames(ctx context.Context, table, expenseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM "+table+" WHERE expense_id = ? ORDER BY position", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return names, nil
}

func (s *SessionStore) loadPayments(ctx context.Context, expenseID string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, amount FROM expense_payments WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment amounts: %w", err)
	}
	defer rows.Close()

	var payments map[string]float64
	for rows.Next() {
		var name string
		var amount float64
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment amount: %w", err)
		}
		if payments == nil {
			payments = make(map[string]float64)
		}
		payments[name] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment amounts: %w", err)
	}
	return payments, nil
}
