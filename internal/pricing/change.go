package pricing

import "github.com/iliyamo/cinepos/internal/model"

// Denominations are the notes and coins the till hands out, largest first,
// in whole currency units.
var Denominations = []int{1000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

// ChangeCents returns the whole-unit change owed, in cents.  Fractions of
// a unit in either amount are dropped before subtracting and the result
// is never negative.
func ChangeCents(paymentCents, totalCents int64) int64 {
	diff := paymentCents/CentsPerUnit - totalCents/CentsPerUnit
	if diff < 0 {
		return 0
	}
	return diff * CentsPerUnit
}

// BreakdownChange splits the change owed into denominations, greedily
// from the largest.  Only non-zero counts are listed, in descending
// denomination order.  The result is empty when no change is owed.
func BreakdownChange(paymentCents, totalCents int64) []model.ChangeItem {
	rest := ChangeCents(paymentCents, totalCents) / CentsPerUnit
	out := []model.ChangeItem{}
	for _, d := range Denominations {
		if rest == 0 {
			break
		}
		n := rest / int64(d)
		if n == 0 {
			continue
		}
		out = append(out, model.ChangeItem{Denomination: d, Count: int(n)})
		rest -= n * int64(d)
	}
	return out
}
