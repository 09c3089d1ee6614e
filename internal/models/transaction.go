// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tag is the direction of a transaction once it has been normalized.
type Tag string

// IsIncomeOrExpense reports whether the tag is one of the two raw directions.
func (t Tag) IsIncomeOrExpense() bool {
	return t == TagIncome || t == TagExpense
}

// TagFor returns Income for strictly positive amounts and Expense otherwise.
func TagFor(amount decimal.Decimal) Tag {
	if amount.IsPositive() {
		return TagIncome
	}
	return TagExpense
}

// Transaction is one bank row moving through the pipeline.
type Transaction struct {
	Row         int // position within the current batch
	Date        time.Time
	AccountType string
	Account     string // already translated to the ledger account name
	Desc1       string
	Desc2       *string // nil when the bank row had no second description
	Amount      decimal.Decimal

	Category    string
	Subcategory string
	Note        string
	Tag         Tag
	Currency    string
	Description string
	NeedsReview bool
}

// Desc2Text returns the second description or "" when absent.
func (t *Transaction) Desc2Text() string {
	if t.Desc2 == nil {
		return ""
	}
	return *t.Desc2
}

// Normalize sets Tag from the sign of Amount and makes Amount absolute.
// Calling it twice is a no-op.
func (t *Transaction) Normalize() {
	if t.Tag != "" {
		return
	}
	t.Tag = TagFor(t.Amount)
	t.Amount = t.Amount.Abs()
}

// Apply copies a triple into the transaction's category fields.
func (t *Transaction) Apply(tr Triple) {
	t.Category = tr.Category
	t.Subcategory = tr.Subcategory
	t.Note = tr.Note
}

// MarkNeedsReview turns the transaction into a placeholder row.
func (t *Transaction) MarkNeedsReview() {
	t.Apply(Triple{Category: CategoryOther})
	t.NeedsReview = true
	t.Description = NeedsReviewMarker
}

// ClearReview removes the placeholder marker set by MarkNeedsReview.
func (t *Transaction) ClearReview() {
	if !t.NeedsReview {
		return
	}
	t.NeedsReview = false
	t.Description = ""
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
