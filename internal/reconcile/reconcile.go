// Package reconcile collapses transfers between the user's own accounts.
//
// A transfer shows up in a bank export as two rows on the same date: money
// leaving one account (Expense) and arriving in another (Income). Such pairs
// are merged into a single Transfer-Out row on the sending account whose
// category is the receiving account. A placeholder on either leg is settled
// by the pairing, so the surviving row is no longer marked for review.
//
// Pairing is greedy: within a date, rows are scanned in order and each row
// pairs with the first eligible partner after it. This is not a maximum
// matching; a row consumed by an early pair is not reconsidered.
package reconcile

import (
	"rbc2mm/internal/dateutils"
	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the relative amount difference below which two legs
// are considered the same transfer.
var DefaultTolerance = decimal.NewFromFloat(0.1)

// Options controls the pairing rule.
type Options struct {
	Tolerance decimal.Decimal
	// LegacyDenominator divides the difference by the later row's amount
	// instead of the larger of the two.
	LegacyDenominator bool
}

// DefaultOptions returns the symmetric rule with DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// Pair is one matched transfer. Expense is the surviving leg as emitted,
// Income is the removed leg as it was before removal. The indices point into
// the input slice.
type Pair struct {
	Expense models.Transaction
	Income  models.Transaction

	ExpenseIndex int
	IncomeIndex  int
}

// Reconcile returns a new batch with transfer pairs collapsed, and the pairs
// that were found. Rows keep their relative order and are renumbered from
// zero. The input slice is not modified.
func Reconcile(txs []models.Transaction, opts Options) ([]models.Transaction, []Pair) {
	if opts.Tolerance.IsZero() {
		opts.Tolerance = DefaultTolerance
	}

	batch := make([]models.Transaction, len(txs))
	copy(batch, txs)

	removed := make([]bool, len(batch))
	consumed := make([]bool, len(batch))
	var pairs []Pair
	var expenseIdx []int

	for _, group := range groupByDate(batch) {
		for a := 0; a < len(group); a++ {
			i := group[a]
			if consumed[i] || !batch[i].Tag.IsIncomeOrExpense() {
				continue
			}
			for b := a + 1; b < len(group); b++ {
				j := group[b]
				if consumed[j] || !batch[j].Tag.IsIncomeOrExpense() {
					continue
				}
				if batch[i].Tag == batch[j].Tag {
					continue
				}
				if !withinTolerance(batch[i].Amount, batch[j].Amount, opts) {
					continue
				}

				expense, income := i, j
				if batch[i].Tag == models.TagIncome {
					expense, income = j, i
				}
				incomeLeg := batch[income]

				batch[expense].Category = incomeLeg.Account
				batch[expense].Subcategory = ""
				batch[expense].Note = ""
				batch[expense].Tag = models.TagTransferOut
				batch[expense].ClearReview()

				consumed[i], consumed[j] = true, true
				removed[income] = true
				pairs = append(pairs, Pair{Income: incomeLeg, ExpenseIndex: expense, IncomeIndex: income})
				expenseIdx = append(expenseIdx, expense)
				break
			}
		}
	}

	out := make([]models.Transaction, 0, len(batch)-len(pairs))
	newRow := make([]int, len(batch))
	for i, tx := range batch {
		if removed[i] {
			continue
		}
		newRow[i] = len(out)
		tx.Row = len(out)
		out = append(out, tx)
	}
	for k, i := range expenseIdx {
		pairs[k].Expense = out[newRow[i]]
	}
	return out, pairs
}

// groupByDate returns row indices grouped by calendar day, groups in order
// of first appearance and rows in batch order.
func groupByDate(batch []models.Transaction) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for i, tx := range batch {
		key := dateutils.DayKey(tx.Date)
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// withinTolerance compares the later row's amount b against the earlier a.
// Zero denominators never pair.
func withinTolerance(a, b decimal.Decimal, opts Options) bool {
	denom := decimal.Max(a, b)
	if opts.LegacyDenominator {
		denom = b
	}
	if !denom.IsPositive() {
		return false
	}
	return a.Sub(b).Abs().Div(denom).LessThan(opts.Tolerance)
}
