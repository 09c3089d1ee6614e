package store

import (
	"os"
	"sort"
	"strings"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// Taxonomy is the flat list of allowed (category, subcategory) pairs.
type Taxonomy struct {
	entries []models.TaxonomyEntry
	text    string
	index   map[string]bool
}

// LoadTaxonomy reads a Category,Subcategory CSV. The raw file content is
// kept as the text handed to the generative fallback.
func LoadTaxonomy(path string, logger logging.Logger) (*Taxonomy, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		storeErr := &caterror.StoreError{Op: "load", Path: path, Err: err}
		logger.WithError(storeErr).Error("Failed to load category taxonomy")
		return nil, storeErr
	}
	entries, err := readCSVFile[models.TaxonomyEntry](path, "Category", "Subcategory")
	if err != nil {
		logger.WithError(err).Error("Failed to parse category taxonomy",
			logging.Field{Key: logging.FieldFile, Value: path})
		return nil, err
	}

	t := NewTaxonomy(entries)
	t.text = strings.TrimPrefix(string(raw), string(utf8BOM))
	logger.Debug("Loaded category taxonomy",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(t.entries)})
	return t, nil
}

// NewTaxonomy builds a taxonomy from pairs, dropping blank categories and
// duplicates and sorting by category then subcategory.
func NewTaxonomy(pairs []models.TaxonomyEntry) *Taxonomy {
	seen := make(map[models.TaxonomyEntry]bool, len(pairs))
	entries := make([]models.TaxonomyEntry, 0, len(pairs))
	for _, p := range pairs {
		p.Category = strings.TrimSpace(p.Category)
		p.Subcategory = strings.TrimSpace(p.Subcategory)
		if p.Category == "" || seen[p] {
			continue
		}
		seen[p] = true
		entries = append(entries, p)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Subcategory < entries[j].Subcategory
	})

	index := make(map[string]bool, len(entries))
	for _, e := range entries {
		index[e.Category] = true
	}
	return &Taxonomy{entries: entries, index: index}
}

// Entries returns the sorted pairs.
func (t *Taxonomy) Entries() []models.TaxonomyEntry {
	out := make([]models.TaxonomyEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Categories returns the distinct category names in order.
func (t *Taxonomy) Categories() []string {
	var out []string
	for _, e := range t.entries {
		if len(out) == 0 || out[len(out)-1] != e.Category {
			out = append(out, e.Category)
		}
	}
	return out
}

// Subcategories returns the subcategories listed under category.
func (t *Taxonomy) Subcategories(category string) []string {
	var out []string
	for _, e := range t.entries {
		if e.Category == category && e.Subcategory != "" {
			out = append(out, e.Subcategory)
		}
	}
	return out
}

// Contains reports whether category is part of the taxonomy.
func (t *Taxonomy) Contains(category string) bool {
	return t.index[category]
}

// Text returns the taxonomy as CSV text. For a loaded taxonomy this is the
// file content unchanged.
func (t *Taxonomy) Text() string {
	if t.text != "" {
		return t.text
	}
	var b strings.Builder
	b.WriteString("Category,Subcategory\n")
	for _, e := range t.entries {
		b.WriteString(e.Category)
		b.WriteByte(',')
		b.WriteString(e.Subcategory)
		b.WriteByte('\n')
	}
	return b.String()
}

// Len returns the number of pairs.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Save writes the taxonomy to path as a Category,Subcategory CSV.
func (t *Taxonomy) Save(path string) error {
	return writeCSVFile(path, t.entries)
}
