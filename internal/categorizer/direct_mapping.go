package categorizer

import (
	"errors"
	"strings"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// fromMapping looks the transaction up in the mapping store. Absent
// descriptions match as "".
func (r *Resolver) fromMapping(tx Transaction) (Result, bool) {
	triple, ok := r.store.Lookup(tx.Desc1, tx.Desc2Text())
	if !ok {
		return Result{}, false
	}

	r.logger.Debug("Transaction categorized from mapping store",
		logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1},
		logging.Field{Key: logging.FieldCategory, Value: triple.Category},
		logging.Field{Key: logging.FieldSubcategory, Value: triple.Subcategory})
	return Result{Triple: triple, Source: models.SourceMapping}, true
}

// learn appends answer to the mapping store so the same descriptions are
// resolved without a fallback from now on.
func (r *Resolver) learn(tx Transaction, answer Answer) error {
	entry := models.NewMappingEntry(learnedPatterns(tx, answer))
	if literalWildcard(answer.Pattern1, tx.Desc1) || literalWildcard(answer.Pattern2, tx.Desc2Text()) {
		r.logger.Warn("Learned description contains '*' and will match as a wildcard",
			logging.Field{Key: logging.FieldDesc1, Value: entry.Description1},
			logging.Field{Key: logging.FieldDesc2, Value: entry.Description2})
	}

	if err := r.store.Append(entry); err != nil {
		if !errors.Is(err, caterror.ErrStoreUnavailable) {
			err = &caterror.StoreError{Op: "persist", Err: err}
		}
		return err
	}
	return nil
}

// learnedPatterns picks the patterns to store: edited patterns when the
// strategy supplied them, the literal descriptions otherwise. An absent
// second description is stored blank, which matches unconditionally.
func learnedPatterns(tx Transaction, answer Answer) (string, string, models.Triple) {
	p1 := answer.Pattern1
	if p1 == "" {
		p1 = tx.Desc1
	}
	p2 := answer.Pattern2
	if p2 == "" {
		p2 = tx.Desc2Text()
	}
	return p1, p2, answer.Triple
}

// literalWildcard reports whether a description learned verbatim (no edited
// pattern) contains the wildcard character.
func literalWildcard(pattern, desc string) bool {
	return pattern == "" && strings.Contains(desc, "*")
}
