package models

// Triple is the categorization answer for a transaction.
type Triple struct {
	Category    string
	Subcategory string
	Note        string
}

// IsZero reports whether no category was assigned.
func (t Triple) IsZero() bool {
	return t.Category == ""
}

// MappingEntry is one row of the mapping store. Description1 and
// Description2 are wildcard patterns; a blank Description2 matches anything.
type MappingEntry struct {
	Description1 string `csv:"Description1"`
	Description2 string `csv:"Description2"`
	Category     string `csv:"Category"`
	Subcategory  string `csv:"Subcategory"`
	Note         string `csv:"Note"`
}

// Triple returns the entry's answer.
func (e MappingEntry) Triple() Triple {
	return Triple{Category: e.Category, Subcategory: e.Subcategory, Note: e.Note}
}

// NewMappingEntry builds an entry from two patterns and an answer.
func NewMappingEntry(pattern1, pattern2 string, t Triple) MappingEntry {
	return MappingEntry{
		Description1: pattern1,
		Description2: pattern2,
		Category:     t.Category,
		Subcategory:  t.Subcategory,
		Note:         t.Note,
	}
}

// TaxonomyEntry is one allowed (category, subcategory) pair.
type TaxonomyEntry struct {
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
}

// AccountTranslation maps a raw bank account number to a ledger account name.
type AccountTranslation struct {
	RBCAccount          string `csv:"RBCAccount"`
	MoneyManagerAccount string `csv:"MoneyManagerAccount"`
}
