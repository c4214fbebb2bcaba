package models

// Balance maps a person to their net position across all expenses.
// Positive means the group owes them money, negative means they owe the
// group. Values within Epsilon of zero count as settled.
type Balance map[string]float64

// Settlement is a single payment instruction that reduces one debtor's and
// one creditor's outstanding balance.
type Settlement struct {
	// From is the person who pays (debtor settling up).
	From string `json:"from"`

	// To is the person who receives the payment (creditor being paid).
	To string `json:"to"`

	// Amount is the payment amount. Always greater than Epsilon.
	Amount float64 `json:"amount"`
}
