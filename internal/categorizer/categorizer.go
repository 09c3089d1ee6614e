// Package categorizer assigns (category, subcategory, note) triples to bank
// transactions. The mapping store is consulted first; on a miss exactly one
// configured fallback strategy (generative or manual) is asked, and its
// answer may be learned back into the store.
package categorizer

import (
	"context"
	"errors"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/logging"
)

var errNoFallback = errors.New("no mapping matched and no fallback is configured")

// Options controls what the resolver learns.
type Options struct {
	// PersistAIResults appends unconfirmed (generative) answers to the
	// mapping store. Confirmed answers are always appended.
	PersistAIResults bool
}

// Resolver runs the mapping lookup and fallback for a single transaction.
type Resolver struct {
	store    MappingStore
	fallback FallbackStrategy
	opts     Options
	logger   logging.Logger
}

// NewResolver creates a Resolver. fallback may be nil, in which case every
// store miss is a categorization failure.
func NewResolver(store MappingStore, fallback FallbackStrategy, opts Options, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Resolver{
		store:    store,
		fallback: fallback,
		opts:     opts,
		logger:   logger,
	}
}

// FallbackName returns the configured fallback's name, or "none".
func (r *Resolver) FallbackName() string {
	if r.fallback == nil {
		return "none"
	}
	return r.fallback.Name()
}

// Resolve categorizes tx. A failing fallback yields a
// *caterror.CategorizationError; a failing store write yields a
// *caterror.StoreError, which callers must treat as fatal for the batch.
func (r *Resolver) Resolve(ctx context.Context, tx Transaction) (Result, error) {
	if res, ok := r.fromMapping(tx); ok {
		return res, nil
	}

	if r.fallback == nil {
		return Result{}, r.failure(tx, errNoFallback)
	}

	r.logger.Debug("No mapping matched, asking fallback",
		logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1},
		logging.Field{Key: logging.FieldDesc2, Value: tx.Desc2Text()},
		logging.Field{Key: logging.FieldStrategy, Value: r.fallback.Name()})

	answer, err := r.fallback.Resolve(ctx, tx)
	if err != nil {
		var fbErr *caterror.FallbackError
		if !errors.As(err, &fbErr) {
			err = caterror.Unavailable(r.fallback.Name(), err)
		}
		return Result{}, r.failure(tx, err)
	}
	if answer.Category == "" {
		return Result{}, r.failure(tx, caterror.Malformed(r.fallback.Name(), "", "empty category"))
	}

	result := Result{Triple: answer.Triple, Source: r.fallback.Name()}
	if r.fallback.Confirmed() || r.opts.PersistAIResults {
		if err := r.learn(tx, answer); err != nil {
			return Result{}, err
		}
		result.Learned = true
	}
	return result, nil
}

func (r *Resolver) failure(tx Transaction, err error) error {
	catErr := &caterror.CategorizationError{
		Date:     tx.Date,
		Desc1:    tx.Desc1,
		Desc2:    tx.Desc2Text(),
		Strategy: r.FallbackName(),
		Err:      err,
	}
	r.logger.WithError(err).Warn("Transaction could not be categorized",
		logging.Field{Key: logging.FieldDate, Value: tx.Date.Format("2006-01-02")},
		logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1},
		logging.Field{Key: logging.FieldDesc2, Value: tx.Desc2Text()},
		logging.Field{Key: logging.FieldStrategy, Value: catErr.Strategy})
	return catErr
}
