// Package calculator holds the pure math of the ledger: net balances per
// person, greedy debt settlement, and spend summaries. Nothing here keeps
// state or re-validates input — the ledger store guarantees every expense
// it hands over is structurally sound.
package calculator

import "github.com/rjsplit/splitr/internal/models"

// Balances computes each person's net position over the given expenses.
// Every person in users starts at zero, so people with no expenses still
// appear in the result.
//
// Each expense contributes along two independent axes:
//   - Credit: payers with explicit positive payment amounts are credited
//     those amounts; when no positive explicit amount exists, every payer
//     is credited an equal share of the total.
//   - Debit: every participant is debited an equal share of the total,
//     regardless of how the payment side was structured.
//
// Who funded an expense and who consumed it are unrelated splits; coupling
// them would be a correctness bug.
func Balances(users []string, expenses []models.Expense) models.Balance {
	balances := make(models.Balance, len(users))
	for _, user := range users {
		balances[user] = 0
	}

	for i := range expenses {
		expense := &expenses[i]

		if explicit := expense.ExplicitPayments(); explicit != nil {
			for payer, amount := range explicit {
				balances[payer] += amount
			}
		} else {
			perPayer := expense.Amount / float64(len(expense.Payers))
			for _, payer := range expense.Payers {
				balances[payer] += perPayer
			}
		}

		share := expense.Amount / float64(len(expense.Participants))
		for _, participant := range expense.Participants {
			balances[participant] -= share
		}
	}

	return balances
}

// Total returns the sum of all expense amounts.
func Total(expenses []models.Expense) float64 {
	var total float64
	for i := range expenses {
		total += expenses[i].Amount
	}
	return total
}

// TotalsByCategory returns per-category spend. Every known category is
// present in the result, zero when unused.
func TotalsByCategory(expenses []models.Expense) map[models.Category]float64 {
	totals := make(map[models.Category]float64, len(models.Categories()))
	for _, category := range models.Categories() {
		totals[category] = 0
	}
	for i := range expenses {
		totals[expenses[i].Category] += expenses[i].Amount
	}
	return totals
}
