package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/rjsplit/splitr/internal/models"
)

func testDate(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", "2024-06-15")
	if err != nil {
		t.Fatalf("failed to parse test date: %v", err)
	}
	return d
}

func validExpense(t *testing.T) models.Expense {
	return models.Expense{
		Description:  "Dinner",
		Category:     models.CategoryFood,
		Amount:       90,
		Date:         testDate(t),
		Payers:       []string{"Alice"},
		Participants: []string{"Alice", "Bob", "Charlie"},
	}
}

func TestAddUser(t *testing.T) {
	tests := []struct {
		name      string
		adds      []string
		wantUsers []string
	}{
		{
			name:      "trims whitespace",
			adds:      []string{"  Alice  "},
			wantUsers: []string{"Alice"},
		},
		{
			name:      "blank name ignored",
			adds:      []string{"", "   "},
			wantUsers: nil,
		},
		{
			name:      "duplicate is a silent no-op",
			adds:      []string{"Alice", "Alice", " Alice "},
			wantUsers: []string{"Alice"},
		},
		{
			name:      "insertion order preserved",
			adds:      []string{"Charlie", "Alice", "Bob"},
			wantUsers: []string{"Charlie", "Alice", "Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			for _, name := range tt.adds {
				store.AddUser(name)
			}
			got := store.Users()
			if len(got) != len(tt.wantUsers) {
				t.Fatalf("Users() = %v, want %v", got, tt.wantUsers)
			}
			for i := range got {
				if got[i] != tt.wantUsers[i] {
					t.Errorf("Users()[%d] = %q, want %q", i, got[i], tt.wantUsers[i])
				}
			}
		})
	}
}

func TestAddExpenseValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *models.Expense)
		wantKind Kind
	}{
		{
			name:     "blank description",
			mutate:   func(e *models.Expense) { e.Description = "   " },
			wantKind: MissingField,
		},
		{
			name:     "zero amount",
			mutate:   func(e *models.Expense) { e.Amount = 0 },
			wantKind: InvalidAmount,
		},
		{
			name:     "negative amount",
			mutate:   func(e *models.Expense) { e.Amount = -10 },
			wantKind: InvalidAmount,
		},
		{
			name:     "no payers",
			mutate:   func(e *models.Expense) { e.Payers = nil },
			wantKind: NoPayers,
		},
		{
			name:     "no participants",
			mutate:   func(e *models.Expense) { e.Participants = nil },
			wantKind: NoParticipants,
		},
		{
			name: "payment amounts do not sum to total",
			mutate: func(e *models.Expense) {
				e.Amount = 100
				e.Payers = []string{"Alice", "Bob"}
				e.PaymentAmounts = map[string]float64{"Alice": 60, "Bob": 30}
			},
			wantKind: PaymentSumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			expense := validExpense(t)
			tt.mutate(&expense)

			_, err := store.AddExpense(expense)
			if err == nil {
				t.Fatal("AddExpense() succeeded, want validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("AddExpense() error = %T, want *ValidationError", err)
			}
			if verr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", verr.Kind, tt.wantKind)
			}
			if got := store.Expenses(); len(got) != 0 {
				t.Errorf("store has %d expenses after rejected add, want 0", len(got))
			}
		})
	}
}

func TestAddExpense(t *testing.T) {
	store := NewStore()

	stored, err := store.AddExpense(validExpense(t))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected expense ID to be assigned")
	}

	second, err := store.AddExpense(validExpense(t))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if second.ID == stored.ID {
		t.Error("expected distinct IDs for distinct expenses")
	}

	t.Run("tolerates near-matching payment amounts", func(t *testing.T) {
		expense := validExpense(t)
		expense.Amount = 100
		expense.Payers = []string{"Alice", "Bob"}
		expense.PaymentAmounts = map[string]float64{"Alice": 60.004, "Bob": 39.999}
		if _, err := store.AddExpense(expense); err != nil {
			t.Errorf("AddExpense rejected sum within tolerance: %v", err)
		}
	})

	t.Run("auto-adds unknown payers and participants", func(t *testing.T) {
		users := store.Users()
		want := map[string]bool{"Alice": true, "Bob": true, "Charlie": true}
		for _, u := range users {
			delete(want, u)
		}
		if len(want) != 0 {
			t.Errorf("users %v missing after expense add (have %v)", want, users)
		}
	})

	t.Run("unknown category defaults to Other", func(t *testing.T) {
		expense := validExpense(t)
		expense.Category = "Snacks"
		stored, err := store.AddExpense(expense)
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
		if stored.Category != models.CategoryOther {
			t.Errorf("category = %q, want %q", stored.Category, models.CategoryOther)
		}
	})
}

func TestEditExpense(t *testing.T) {
	store := NewStore()
	stored, err := store.AddExpense(validExpense(t))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	t.Run("replaces entire record", func(t *testing.T) {
		replacement := validExpense(t)
		replacement.Description = "Taxi"
		replacement.Category = models.CategoryTransport
		replacement.Amount = 45

		found, err := store.EditExpense(stored.ID, replacement)
		if err != nil {
			t.Fatalf("EditExpense failed: %v", err)
		}
		if !found {
			t.Fatal("EditExpense reported not found for existing id")
		}

		got, ok := store.Expense(stored.ID)
		if !ok {
			t.Fatal("expense missing after edit")
		}
		if got.Description != "Taxi" || got.Amount != 45 || got.Category != models.CategoryTransport {
			t.Errorf("edit not applied: %+v", got)
		}
		if got.ID != stored.ID {
			t.Errorf("id changed on edit: got %s, want %s", got.ID, stored.ID)
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := store.Expenses()
		found, err := store.EditExpense("nonexistent-id", validExpense(t))
		if err != nil {
			t.Fatalf("EditExpense failed: %v", err)
		}
		if found {
			t.Error("EditExpense reported found for unknown id")
		}
		if after := store.Expenses(); len(after) != len(before) {
			t.Errorf("expense count changed: got %d, want %d", len(after), len(before))
		}
	})

	t.Run("invalid replacement leaves record untouched", func(t *testing.T) {
		bad := validExpense(t)
		bad.Amount = -1
		if _, err := store.EditExpense(stored.ID, bad); err == nil {
			t.Fatal("EditExpense accepted invalid replacement")
		}
		got, _ := store.Expense(stored.ID)
		if got.Amount != 45 {
			t.Errorf("record changed after rejected edit: amount = %v, want 45", got.Amount)
		}
	})
}

func TestRemoveExpense(t *testing.T) {
	store := NewStore()
	stored, err := store.AddExpense(validExpense(t))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if !store.RemoveExpense(stored.ID) {
		t.Error("RemoveExpense returned false for existing expense")
	}
	if store.RemoveExpense(stored.ID) {
		t.Error("RemoveExpense returned true for already-removed expense")
	}
	if got := store.Expenses(); len(got) != 0 {
		t.Errorf("store has %d expenses after removal, want 0", len(got))
	}
}

func TestRemoveUserCascade(t *testing.T) {
	store := NewStore()
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		store.AddUser(name)
	}

	shared, err := store.AddExpense(models.Expense{
		Description: "Groceries",
		Category:    models.CategoryFood,
		Amount:      60,
		Date:        testDate(t),
		Payers:      []string{"Alice", "Bob"},
		PaymentAmounts: map[string]float64{
			"Alice": 40,
			"Bob":   20,
		},
		Participants: []string{"Alice", "Bob", "Charlie"},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	soloPayer, err := store.AddExpense(models.Expense{
		Description:  "Taxi",
		Category:     models.CategoryTransport,
		Amount:       30,
		Date:         testDate(t),
		Payers:       []string{"Bob"},
		Participants: []string{"Alice", "Charlie"},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if !store.RemoveUser("Bob") {
		t.Fatal("RemoveUser returned false for existing user")
	}

	t.Run("user gone from user list", func(t *testing.T) {
		for _, u := range store.Users() {
			if u == "Bob" {
				t.Error("Bob still present in users")
			}
		}
	})

	t.Run("stripped from surviving expense", func(t *testing.T) {
		got, ok := store.Expense(shared.ID)
		if !ok {
			t.Fatal("shared expense was deleted, want kept")
		}
		for _, p := range got.Payers {
			if p == "Bob" {
				t.Error("Bob still in payers")
			}
		}
		for _, p := range got.Participants {
			if p == "Bob" {
				t.Error("Bob still in participants")
			}
		}
		if _, ok := got.PaymentAmounts["Bob"]; ok {
			t.Error("Bob still in payment amounts")
		}
	})

	t.Run("expense with no payers left is deleted entirely", func(t *testing.T) {
		if _, ok := store.Expense(soloPayer.ID); ok {
			t.Error("expense with empty payers survived the cascade")
		}
	})

	t.Run("removing unknown user is a no-op", func(t *testing.T) {
		if store.RemoveUser("Nobody") {
			t.Error("RemoveUser returned true for unknown user")
		}
	})
}

func TestStoreHandsOutCopies(t *testing.T) {
	store := NewStore()
	store.AddUser("Alice")
	stored, err := store.AddExpense(validExpense(t))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	users := store.Users()
	users[0] = "Mallory"
	if store.Users()[0] != "Alice" {
		t.Error("mutating returned user slice changed stored state")
	}

	got, _ := store.Expense(stored.ID)
	got.Payers[0] = "Mallory"
	again, _ := store.Expense(stored.ID)
	if again.Payers[0] != "Alice" {
		t.Error("mutating returned expense changed stored state")
	}
}
