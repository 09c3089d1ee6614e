package categorizer

import (
	"rbc2mm/internal/models"
)

// Result is the outcome of resolving one transaction.
type Result struct {
	models.Triple
	Source  string // models.SourceMapping or the fallback's Name()
	Learned bool   // the answer was appended to the mapping store
}

// FromStore reports whether the triple came from the mapping store.
func (r Result) FromStore() bool {
	return r.Source == models.SourceMapping
}
