// Package batch runs one categorization batch: every transaction is tagged,
// resolved and then reconciled for transfers between the user's accounts.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rbc2mm/internal/categorizer"
	"rbc2mm/internal/caterror"
	"rbc2mm/internal/ledger"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
	"rbc2mm/internal/reconcile"

	"github.com/google/uuid"
)

// Failure policies for transactions no strategy could categorize.
const (
	OnFailureAbort       = "abort"
	OnFailurePlaceholder = "placeholder"
)

// Resolver is the part of categorizer.Resolver the driver needs.
type Resolver interface {
	Resolve(ctx context.Context, tx categorizer.Transaction) (categorizer.Result, error)
}

// Options controls a batch run.
type Options struct {
	OnFailure string // OnFailureAbort (default) or OnFailurePlaceholder
	Currency  string // written to every row; models.DefaultCurrency when empty

	SkipReconcile bool
	Reconcile     reconcile.Options
}

// Report is the outcome of a batch run.
type Report struct {
	RunID        string
	Transactions []models.Transaction
	Pairs        []reconcile.Pair
	Stats        models.CategorizationStats
	// Failures holds the errors replaced by placeholders that still need
	// review. Placeholders settled by transfer pairing are not listed.
	Failures []error
}

// MergeWith merges the batch into history and returns the combined ledger
// and the number of batch rows already present in history.
func (r *Report) MergeWith(history []models.Transaction) ([]models.Transaction, int) {
	return ledger.Merge(history, r.Transactions)
}

// Driver owns a batch for the duration of one Run.
type Driver struct {
	resolver Resolver
	opts     Options
	logger   logging.Logger
	newRunID func() string
}

// NewDriver creates a driver around resolver.
func NewDriver(resolver Resolver, opts Options, logger logging.Logger) *Driver {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.OnFailure == "" {
		opts.OnFailure = OnFailureAbort
	}
	if opts.Currency == "" {
		opts.Currency = models.DefaultCurrency
	}
	return &Driver{
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Run categorizes and reconciles txs. The input slice is not modified.
// Store errors always abort the run; categorization failures abort or
// become placeholders according to Options.OnFailure.
func (d *Driver) Run(ctx context.Context, txs []models.Transaction) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: d.newRunID()}
	runField := logging.Field{Key: logging.FieldRunID, Value: report.RunID}

	d.logger.Info("Starting batch",
		runField,
		logging.Field{Key: logging.FieldCount, Value: len(txs)})

	batch := make([]models.Transaction, len(txs))
	copy(batch, txs)
	failed := make(map[int]error)

	for i := range batch {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %s cancelled: %w", report.RunID, err)
		}

		tx := &batch[i]
		tx.Row = i
		tx.Normalize()
		if tx.Currency == "" {
			tx.Currency = d.opts.Currency
		}

		res, err := d.resolver.Resolve(ctx, categorizer.FromModel(*tx))
		if err != nil {
			if !d.placeholderAllowed(ctx, err) {
				return nil, err
			}
			tx.MarkNeedsReview()
			failed[i] = err
			report.Stats.Record(models.SourcePlaceholder, false)
			d.logger.Warn("Using placeholder category",
				runField,
				logging.Field{Key: logging.FieldRow, Value: i},
				logging.Field{Key: logging.FieldDate, Value: tx.Date.Format("2006-01-02")},
				logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1})
			continue
		}

		tx.Apply(res.Triple)
		report.Stats.Record(res.Source, res.Learned)
		d.logger.Debug("Categorized transaction",
			runField,
			logging.Field{Key: logging.FieldRow, Value: i},
			logging.Field{Key: logging.FieldCategory, Value: res.Category},
			logging.Field{Key: logging.FieldSubcategory, Value: res.Subcategory},
			logging.Field{Key: logging.FieldSource, Value: res.Source})
	}

	if d.opts.SkipReconcile {
		report.Transactions = batch
	} else {
		report.Transactions, report.Pairs = reconcile.Reconcile(batch, d.opts.Reconcile)
		report.Stats.Transfers = len(report.Pairs)
		for _, p := range report.Pairs {
			delete(failed, p.ExpenseIndex)
			delete(failed, p.IncomeIndex)
			d.logger.Debug("Collapsed transfer",
				runField,
				logging.Field{Key: logging.FieldDate, Value: p.Expense.Date.Format("2006-01-02")},
				logging.Field{Key: logging.FieldAccount, Value: p.Expense.Account},
				logging.Field{Key: "to_account", Value: p.Income.Account},
				logging.Field{Key: "amount", Value: p.Expense.Amount.StringFixed(2)})
		}
	}

	for i := range batch {
		if err, ok := failed[i]; ok {
			report.Failures = append(report.Failures, err)
		}
	}

	report.Stats.LogSummary(d.logger, report.RunID)
	d.logger.Info("Batch finished",
		runField,
		logging.Field{Key: logging.FieldCount, Value: len(report.Transactions)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})
	return report, nil
}

// placeholderAllowed reports whether err may be replaced by a placeholder.
func (d *Driver) placeholderAllowed(ctx context.Context, err error) bool {
	if d.opts.OnFailure != OnFailurePlaceholder || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, caterror.ErrStoreUnavailable) {
		return false
	}
	return errors.Is(err, caterror.ErrCategorizationFailed)
}
