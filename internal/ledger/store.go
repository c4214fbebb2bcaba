// Package ledger owns the canonical lists of people and expenses and
// enforces their structural rules on every mutation.
package ledger

import (
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rjsplit/splitr/internal/models"
)

// Store is the single owner of all people and expenses. Every mutation
// either applies fully or leaves the store untouched; reads hand out
// defensive copies. The balance and settlement math lives in the
// calculator package and always recomputes from a fresh snapshot.
type Store struct {
	mu       sync.RWMutex
	users    []string
	expenses []models.Expense
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddUser adds a person by name, preserving insertion order. The name is
// trimmed first; blank or already-present names are silently ignored.
// Returns true when the person was actually added.
func (s *Store) AddUser(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u == name {
			return false
		}
	}
	s.users = append(s.users, name)
	return true
}

// RemoveUser removes a person and strips them from every expense's payers,
// participants and payment amounts in the same step. Expenses left with no
// payers or no participants are deleted entirely. Removing an unknown name
// is a no-op. Returns true when the person existed.
func (s *Store) RemoveUser(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, u := range s.users {
		if u == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)

	kept := s.expenses[:0]
	for i := range s.expenses {
		e := &s.expenses[i]
		e.Payers = removeName(e.Payers, name)
		e.Participants = removeName(e.Participants, name)
		delete(e.PaymentAmounts, name)
		if len(e.Payers) == 0 || len(e.Participants) == 0 {
			continue
		}
		kept = append(kept, *e)
	}
	s.expenses = kept
	return true
}

// Users returns the people in insertion order.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.users...)
}

// Expenses returns all stored expenses in insertion order.
func (s *Store) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExpenses(s.expenses)
}

// Expense returns the expense with the given id, if present.
func (s *Store) Expense(id string) (models.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			return s.expenses[i].Clone(), true
		}
	}
	return models.Expense{}, false
}

// AddExpense validates and stores a new expense, assigning it a fresh ID.
// On a validation failure nothing is written and the returned error is a
// *ValidationError identifying the violated rule.
func (s *Store) AddExpense(e models.Expense) (models.Expense, error) {
	if err := validate(&e); err != nil {
		return models.Expense{}, err
	}

	stored := e.Clone()
	stored.ID = uuid.New().String()
	normalize(&stored)

	s.mu.Lock()
	s.ensureUsersLocked(&stored)
	s.expenses = append(s.expenses, stored)
	s.mu.Unlock()

	return stored.Clone(), nil
}

// EditExpense replaces the entire expense record identified by id. The
// replacement is validated first; editing an unknown id is a no-op and
// reports found=false.
func (s *Store) EditExpense(id string, e models.Expense) (found bool, err error) {
	if err := validate(&e); err != nil {
		return false, err
	}

	stored := e.Clone()
	stored.ID = id
	normalize(&stored)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.ensureUsersLocked(&stored)
			s.expenses[i] = stored
			return true, nil
		}
	}
	return false, nil
}

// RemoveExpense deletes the expense with the given id. Removing an unknown
// id is a no-op. Returns true when the expense existed.
func (s *Store) RemoveExpense(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the full state, for persistence.
func (s *Store) Snapshot() ([]string, []models.Expense) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.users...), cloneExpenses(s.expenses)
}

// Replace swaps in a previously snapshotted state, e.g., when restoring a
// saved session. The inputs are copied; no validation is re-run because
// snapshots were validated when first written.
func (s *Store) Replace(users []string, expenses []models.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]string(nil), users...)
	s.expenses = cloneExpenses(expenses)
}

// validate checks the structural rules in a fixed order and reports the
// first violation.
func validate(e *models.Expense) error {
	if strings.TrimSpace(e.Description) == "" {
		return validationErr(MissingField, "description is required")
	}
	if e.Amount <= 0 {
		return validationErr(InvalidAmount, "amount must be positive, got %v", e.Amount)
	}
	if len(e.Payers) == 0 {
		return validationErr(NoPayers, "at least one payer is required")
	}
	if len(e.Participants) == 0 {
		return validationErr(NoParticipants, "at least one participant is required")
	}
	if len(e.PaymentAmounts) > 0 {
		var sum float64
		for _, amount := range e.PaymentAmounts {
			sum += amount
		}
		if math.Abs(sum-e.Amount) > models.Epsilon {
			return validationErr(PaymentSumMismatch,
				"payment amounts sum to %v but expense amount is %v", sum, e.Amount)
		}
	}
	return nil
}

// normalize fills defaults on an expense that already passed validation.
func normalize(e *models.Expense) {
	if !e.Category.Valid() {
		e.Category = models.CategoryOther
	}
}

// ensureUsersLocked auto-adds any payer or participant not already in the
// user list, so every balance key is always a known person. Caller holds
// the write lock.
func (s *Store) ensureUsersLocked(e *models.Expense) {
	known := make(map[string]bool, len(s.users))
	for _, u := range s.users {
		known[u] = true
	}
	for _, name := range append(append([]string(nil), e.Payers...), e.Participants...) {
		if !known[name] {
			s.users = append(s.users, name)
			known[name] = true
		}
	}
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func cloneExpenses(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, len(expenses))
	for i := range expenses {
		out[i] = expenses[i].Clone()
	}
	return out
}
