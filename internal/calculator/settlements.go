package calculator

import (
	"sort"

	"github.com/rjsplit/splitr/internal/models"
)

// party is one side of an outstanding debt during the greedy walk.
type party struct {
	person string
	amount float64
}

// Settlements converts balances into an ordered list of transfers that
// zeroes every balance. The order slice pins iteration: people are
// partitioned in that order, so equal amounts settle deterministically by
// insertion order (Go map iteration is randomized, balances alone would
// not be enough).
//
// Greedy matching: debtors and creditors are each sorted descending by
// amount, then walked with two cursors, always transferring the smaller of
// the two heads. This minimizes effort, not the theoretical transfer count
// — the minimal-count variant is NP-hard and deliberately not attempted.
func Settlements(order []string, balances models.Balance) []models.Settlement {
	var debtors, creditors []party
	for _, person := range order {
		balance := balances[person]
		switch {
		case balance > models.Epsilon:
			creditors = append(creditors, party{person: person, amount: balance})
		case balance < -models.Epsilon:
			debtors = append(debtors, party{person: person, amount: -balance})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].amount > debtors[j].amount
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].amount > creditors[j].amount
	})

	var settlements []models.Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		transfer := debtors[i].amount
		if creditors[j].amount < transfer {
			transfer = creditors[j].amount
		}

		if transfer > models.Epsilon {
			settlements = append(settlements, models.Settlement{
				From:   debtors[i].person,
				To:     creditors[j].person,
				Amount: transfer,
			})
		}

		debtors[i].amount -= transfer
		creditors[j].amount -= transfer

		if debtors[i].amount < models.Epsilon {
			i++
		}
		if creditors[j].amount < models.Epsilon {
			j++
		}
	}

	return settlements
}
