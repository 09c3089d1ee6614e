package categorizer

import (
	"context"
	"time"

	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
)

// Transaction is the view of a bank row the categorizer works on.
type Transaction struct {
	Date    time.Time
	Account string
	Desc1   string
	Desc2   *string // nil when the bank row had no second description
	Amount  decimal.Decimal
	Tag     models.Tag
}

// Desc2Text returns the second description or "" when absent.
func (tx Transaction) Desc2Text() string {
	if tx.Desc2 == nil {
		return ""
	}
	return *tx.Desc2
}

// FromModel builds the categorizer view of a pipeline transaction.
func FromModel(t models.Transaction) Transaction {
	return Transaction{
		Date:    t.Date,
		Account: t.Account,
		Desc1:   t.Desc1,
		Desc2:   t.Desc2,
		Amount:  t.Amount,
		Tag:     t.Tag,
	}
}

// Answer is what a fallback strategy proposes for an unmapped transaction.
// Pattern1 and Pattern2 are the patterns to learn; when blank the literal
// descriptions are stored instead.
type Answer struct {
	models.Triple
	Pattern1 string
	Pattern2 string
}

// FallbackStrategy resolves transactions the mapping store does not cover.
// Exactly one strategy is configured per run.
type FallbackStrategy interface {
	// Name identifies the strategy in logs, errors and results.
	Name() string

	// Resolve returns an answer, or a *caterror.FallbackError of kind
	// ErrFallbackUnavailable or ErrFallbackMalformed.
	Resolve(ctx context.Context, tx Transaction) (Answer, error)

	// Confirmed reports whether answers come from a human. Confirmed
	// answers are always written back to the mapping store.
	Confirmed() bool
}
