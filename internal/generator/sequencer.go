package generator

import (
	"slices"

	"releve/internal/core"
)

// Sequence orders txs by date and annotates running balances starting from opening.
//
// Ordering is stable: same-day transactions keep their sampling order. The input
// slice is not modified. Closing equals opening for an empty period.
func Sequence(period core.Period, opening core.Money, txs []core.Transaction) core.Batch {
	ordered := slices.Clone(txs)
	slices.SortStableFunc(ordered, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})

	balance := opening
	for i := range ordered {
		balance = balance.Add(ordered[i].Amount)
		ordered[i].Balance = balance
	}

	return core.Batch{
		Period:       period,
		Opening:      opening,
		Closing:      balance,
		Transactions: ordered,
	}
}
