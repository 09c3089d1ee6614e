package batch

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// DateRangeOf returns the first and last date found in txs.
func DateRangeOf(txs []models.Transaction) DateRange {
	var dr DateRange
	for _, tx := range txs {
		if dr.Start.IsZero() || tx.Date.Before(dr.Start) {
			dr.Start = tx.Date
		}
		if dr.End.IsZero() || tx.Date.After(dr.End) {
			dr.End = tx.Date
		}
	}
	return dr
}

// ParseFunc reads the transactions of one input file.
type ParseFunc func(path string) ([]models.Transaction, error)

// Aggregator combines several bank exports into one batch.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Aggregator{logger: logger}
}

// Aggregate parses every file and returns their rows as one batch, stably
// ordered by date and renumbered. Any file that fails to parse fails the
// whole batch.
func (a *Aggregator) Aggregate(files []string, parse ParseFunc) ([]models.Transaction, error) {
	var all []models.Transaction
	for _, file := range files {
		txs, err := parse(file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(file), err)
		}
		a.logger.Debug("Loaded transactions from file",
			logging.Field{Key: logging.FieldCount, Value: len(txs)},
			logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)})
		all = append(all, txs...)
	}

	if len(files) > 1 {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].Date.Before(all[j].Date)
		})
		a.logDuplicates(all)
	}
	for i := range all {
		all[i].Row = i
	}

	dr := DateRangeOf(all)
	a.logger.Info("Aggregated transactions",
		logging.Field{Key: logging.FieldCount, Value: len(all)},
		logging.Field{Key: "files", Value: len(files)},
		logging.Field{Key: "date_range", Value: dr.String()})
	return all, nil
}

// logDuplicates warns about rows that look identical across overlapping
// exports. They are kept; the history merge drops exact repeats later.
func (a *Aggregator) logDuplicates(txs []models.Transaction) {
	type key struct {
		day, account, desc1, amount string
	}
	seen := make(map[key]bool, len(txs))
	count := 0
	for _, tx := range txs {
		k := key{tx.Date.Format("2006-01-02"), tx.Account, tx.Desc1, tx.Amount.String()}
		if seen[k] {
			count++
			a.logger.Warn("Potential duplicate transaction",
				logging.Field{Key: logging.FieldDate, Value: k.day},
				logging.Field{Key: logging.FieldAccount, Value: tx.Account},
				logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1},
				logging.Field{Key: "amount", Value: k.amount})
			continue
		}
		seen[k] = true
	}
	if count > 0 {
		a.logger.Warn("Found potential duplicate transactions",
			logging.Field{Key: logging.FieldCount, Value: count})
	}
}
