package models

import "time"

// Epsilon is the fixed tolerance below which an amount or balance is
// treated as zero. It absorbs floating-point rounding across the whole
// engine and is deliberately not configurable.
const Epsilon = 0.01

// Expense represents one shared expense.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	// Assigned once at creation and stable for the expense's lifetime.
	ID string `json:"id"`

	// Description is a human-readable label (e.g., "Dinner", "Fuel").
	Description string `json:"description"`

	// Category classifies the expense.
	Category Category `json:"category"`

	// Amount is the total cost of the expense. Always positive.
	Amount float64 `json:"amount"`

	// Date is the calendar date the expense occurred.
	Date time.Time `json:"date"`

	// Payers are the people who contributed money. Never empty for a
	// stored expense.
	Payers []string `json:"payers"`

	// PaymentAmounts optionally records exactly how much each payer
	// contributed. When it has at least one positive entry it is
	// authoritative for crediting; otherwise payers are credited equally.
	PaymentAmounts map[string]float64 `json:"payment_amounts,omitempty"`

	// Participants are the people who benefited from the expense and share
	// its cost equally. Never empty for a stored expense.
	Participants []string `json:"participants"`
}

// ExplicitPayments returns the positive entries of PaymentAmounts.
// The expense is in explicit-payment mode iff the result is non-empty.
func (e *Expense) ExplicitPayments() map[string]float64 {
	if len(e.PaymentAmounts) == 0 {
		return nil
	}
	out := make(map[string]float64, len(e.PaymentAmounts))
	for payer, amount := range e.PaymentAmounts {
		if amount > 0 {
			out[payer] = amount
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Clone returns a deep copy of the expense so the caller can mutate it
// without aliasing stored state.
func (e *Expense) Clone() Expense {
	out := *e
	out.Payers = append([]string(nil), e.Payers...)
	out.Participants = append([]string(nil), e.Participants...)
	if e.PaymentAmounts != nil {
		out.PaymentAmounts = make(map[string]float64, len(e.PaymentAmounts))
		for payer, amount := range e.PaymentAmounts {
			out.PaymentAmounts[payer] = amount
		}
	}
	return out
}
