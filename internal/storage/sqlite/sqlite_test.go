package sqlite

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rjsplit/splitr/internal/models"
	"github.com/rjsplit/splitr/internal/storage"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	date, err := time.Parse("2006-01-02", "2024-06-15")
	if err != nil {
		t.Fatalf("failed to parse date: %v", err)
	}

	session := &storage.Session{
		Users: []string{"Charlie", "Alice", "Bob"},
		Expenses: []models.Expense{
			{
				ID:           "e1",
				Description:  "Dinner",
				Category:     models.CategoryFood,
				Amount:       90.5,
				Date:         date,
				Payers:       []string{"Alice"},
				Participants: []string{"Charlie", "Alice", "Bob"},
			},
			{
				ID:          "e2",
				Description: "Hotel",
				Category:    models.CategoryAccommodation,
				Amount:      1500,
				Date:        date,
				Payers:      []string{"Alice", "Bob"},
				PaymentAmounts: map[string]float64{
					"Alice": 900,
					"Bob":   600,
				},
				Participants: []string{"Alice", "Bob"},
			},
		},
	}

	t.Run("save and load roundtrip", func(t *testing.T) {
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if len(loaded.Users) != 3 {
			t.Fatalf("loaded %d users, want 3", len(loaded.Users))
		}
		for i, want := range session.Users {
			if loaded.Users[i] != want {
				t.Errorf("user order lost: got %q at %d, want %q", loaded.Users[i], i, want)
			}
		}

		if len(loaded.Expenses) != 2 {
			t.Fatalf("loaded %d expenses, want 2", len(loaded.Expenses))
		}
		got := loaded.Expenses[0]
		if got.ID != "e1" || got.Description != "Dinner" || got.Category != models.CategoryFood {
			t.Errorf("expense fields lost: %+v", got)
		}
		if math.Abs(got.Amount-90.5) > 0.01 {
			t.Errorf("amount = %v, want 90.5", got.Amount)
		}
		if !got.Date.Equal(date) {
			t.Errorf("date = %v, want %v", got.Date, date)
		}
		if len(got.Participants) != 3 || got.Participants[0] != "Charlie" {
			t.Errorf("participant order lost: %v", got.Participants)
		}

		hotel := loaded.Expenses[1]
		if len(hotel.PaymentAmounts) != 2 {
			t.Fatalf("payment amounts lost: %v", hotel.PaymentAmounts)
		}
		if math.Abs(hotel.PaymentAmounts["Alice"]-900) > 0.01 {
			t.Errorf("Alice payment = %v, want 900", hotel.PaymentAmounts["Alice"])
		}
	})

	t.Run("save replaces previous snapshot", func(t *testing.T) {
		smaller := &storage.Session{
			Users: []string{"Alice"},
			Expenses: []models.Expense{
				{
					ID:           "e3",
					Description:  "Coffee",
					Category:     models.CategoryFood,
					Amount:       4.5,
					Date:         date,
					Payers:       []string{"Alice"},
					Participants: []string{"Alice"},
				},
			},
		}
		if err := store.Save(ctx, smaller); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(loaded.Users) != 1 || len(loaded.Expenses) != 1 {
			t.Errorf("old snapshot not replaced: %d users, %d expenses",
				len(loaded.Users), len(loaded.Expenses))
		}
		if loaded.Expenses[0].ID != "e3" {
			t.Errorf("expense id = %q, want e3", loaded.Expenses[0].ID)
		}
	})
}

func TestSessionStoreEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Users) != 0 || len(loaded.Expenses) != 0 {
		t.Errorf("fresh store not empty: %+v", loaded)
	}
}
