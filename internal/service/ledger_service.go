// Package service glues the ledger store to the pure calculators and the
// session persistence collaborator.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rjsplit/splitr/internal/calculator"
	"github.com/rjsplit/splitr/internal/ledger"
	"github.com/rjsplit/splitr/internal/models"
	"github.com/rjsplit/splitr/internal/receipt"
	"github.com/rjsplit/splitr/internal/storage"
)

// Summary aggregates the current spend for display.
type Summary struct {
	Total        float64                     `json:"total"`
	ByCategory   map[models.Category]float64 `json:"by_category"`
	ExpenseCount int                         `json:"expense_count"`
	UserCount    int                         `json:"user_count"`
}

// LedgerService owns a ledger store and recomputes balances and
// settlements from scratch on every read — there is no cached settlement
// state. After every successful mutation the whole session is snapshotted
// to the session store.
type LedgerService struct {
	store    *ledger.Store
	sessions storage.SessionStore
}

// New creates a LedgerService. The session store may be nil, in which case
// the ledger lives only in memory.
func New(store *ledger.Store, sessions storage.SessionStore) *LedgerService {
	return &LedgerService{store: store, sessions: sessions}
}

// Restore loads the persisted session, if any, into the store. Meant to be
// called once at startup.
func (s *LedgerService) Restore(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return err
	}
	s.store.Replace(session.Users, session.Expenses)
	slog.Info("Session restored",
		"users", len(session.Users),
		"expenses", len(session.Expenses),
	)
	return nil
}

// AddUser adds a person. Blank and duplicate names are silently ignored.
func (s *LedgerService) AddUser(ctx context.Context, name string) bool {
	added := s.store.AddUser(name)
	if added {
		slog.Info("User added", "name", name)
		s.persist(ctx)
	}
	return added
}

// RemoveUser removes a person and cascades through every expense.
func (s *LedgerService) RemoveUser(ctx context.Context, name string) bool {
	removed := s.store.RemoveUser(name)
	if removed {
		slog.Info("User removed", "name", name)
		s.persist(ctx)
	}
	return removed
}

// Users returns all people in insertion order.
func (s *LedgerService) Users() []string {
	return s.store.Users()
}

// AddExpense validates and stores a new expense.
func (s *LedgerService) AddExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	stored, err := s.store.AddExpense(e)
	if err != nil {
		slog.Warn("AddExpense rejected", "description", e.Description, "error", err)
		return models.Expense{}, err
	}
	slog.Info("Expense added", "expense_id", stored.ID, "amount", stored.Amount)
	s.persist(ctx)
	return stored, nil
}

// EditExpense replaces the expense identified by id. Editing an unknown id
// reports found=false and changes nothing.
func (s *LedgerService) EditExpense(ctx context.Context, id string, e models.Expense) (models.Expense, bool, error) {
	found, err := s.store.EditExpense(id, e)
	if err != nil {
		slog.Warn("EditExpense rejected", "expense_id", id, "error", err)
		return models.Expense{}, false, err
	}
	if !found {
		slog.Warn("EditExpense: unknown expense", "expense_id", id)
		return models.Expense{}, false, nil
	}
	slog.Info("Expense updated", "expense_id", id)
	s.persist(ctx)
	stored, _ := s.store.Expense(id)
	return stored, true, nil
}

// RemoveExpense deletes an expense. Removal is idempotent.
func (s *LedgerService) RemoveExpense(ctx context.Context, id string) bool {
	removed := s.store.RemoveExpense(id)
	if removed {
		slog.Info("Expense removed", "expense_id", id)
		s.persist(ctx)
	}
	return removed
}

// Expenses returns all expenses in insertion order.
func (s *LedgerService) Expenses() []models.Expense {
	return s.store.Expenses()
}

// Balances recomputes every person's net position.
func (s *LedgerService) Balances() models.Balance {
	users, expenses := s.store.Snapshot()
	return calculator.Balances(users, expenses)
}

// Settlements recomputes the transfer list that settles all debts.
func (s *LedgerService) Settlements() []models.Settlement {
	users, expenses := s.store.Snapshot()
	balances := calculator.Balances(users, expenses)
	return calculator.Settlements(users, balances)
}

// Summarize returns total and per-category spend.
func (s *LedgerService) Summarize() Summary {
	users, expenses := s.store.Snapshot()
	return Summary{
		Total:        calculator.Total(expenses),
		ByCategory:   calculator.TotalsByCategory(expenses),
		ExpenseCount: len(expenses),
		UserCount:    len(users),
	}
}

// WriteReceipt renders the plain-text receipt for the current session.
func (s *LedgerService) WriteReceipt(w io.Writer, now time.Time) error {
	users, expenses := s.store.Snapshot()
	balances := calculator.Balances(users, expenses)
	return receipt.Render(w, receipt.Data{
		Users:       users,
		Expenses:    expenses,
		Balances:    balances,
		Settlements: calculator.Settlements(users, balances),
		GeneratedAt: now,
	})
}

// persist snapshots the session after a successful mutation. The in-memory
// store stays authoritative: a failed snapshot is logged, never surfaced
// to the mutating caller.
func (s *LedgerService) persist(ctx context.Context) {
	if s.sessions == nil {
		return
	}
	users, expenses := s.store.Snapshot()
	if err := s.sessions.Save(ctx, &storage.Session{Users: users, Expenses: expenses}); err != nil {
		slog.Error("Failed to persist session", "error", err)
	}
}
