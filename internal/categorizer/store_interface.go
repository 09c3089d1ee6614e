package categorizer

import "rbc2mm/internal/models"

// MappingStore is the part of the mapping store the resolver needs.
// *store.MappingStore and *store.MockMappingStore both satisfy it.
type MappingStore interface {
	Lookup(desc1, desc2 string) (models.Triple, bool)
	Append(entry models.MappingEntry) error
}

// Taxonomy is the part of the category taxonomy the fallbacks need.
type Taxonomy interface {
	Text() string
	Contains(category string) bool
	Categories() []string
	Subcategories(category string) []string
}
