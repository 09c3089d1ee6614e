package store

import (
	"sync"

	"rbc2mm/internal/fileutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
	"rbc2mm/internal/pattern"
)

// writeAtomic is swapped in tests to simulate persistence failures.
var writeAtomic = func(path string, data []byte) error {
	return fileutils.WriteFileAtomic(path, data, models.PermissionDataFile)
}

type compiledEntry struct {
	desc1 *pattern.Pattern
	desc2 *pattern.Pattern // nil when Description2 is blank
}

// MappingStore is the ordered table of description patterns to triples.
// Entries are checked in file order and the first full match wins. The
// store only ever grows: Append adds at the end and rewrites the file.
type MappingStore struct {
	mu       sync.RWMutex
	path     string
	entries  []models.MappingEntry
	compiled []compiledEntry
	logger   logging.Logger
}

// LoadMappingStore reads the mapping file at path. A missing or unparseable
// file is an error wrapping caterror.ErrStoreUnavailable; a header-only file
// is a valid empty store.
func LoadMappingStore(path string, logger logging.Logger) (*MappingStore, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	entries, err := readCSVFile[models.MappingEntry](path, "Description1", "Description2", "Category", "Subcategory", "Note")
	if err != nil {
		logger.WithError(err).Error("Failed to load mapping store",
			logging.Field{Key: logging.FieldFile, Value: path})
		return nil, err
	}

	s := NewMappingStore(path, entries, logger)
	logger.Debug("Loaded mapping store",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(entries)})
	return s, nil
}

// NewMappingStore builds a store from entries already in memory. Append
// persists to path.
func NewMappingStore(path string, entries []models.MappingEntry, logger logging.Logger) *MappingStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &MappingStore{
		path:     path,
		entries:  make([]models.MappingEntry, 0, len(entries)),
		compiled: make([]compiledEntry, 0, len(entries)),
		logger:   logger,
	}
	for _, e := range entries {
		s.add(e)
	}
	return s
}

func (s *MappingStore) add(e models.MappingEntry) {
	c := compiledEntry{desc1: pattern.Compile(e.Description1)}
	if e.Description2 != "" {
		c.desc2 = pattern.Compile(e.Description2)
	}
	s.entries = append(s.entries, e)
	s.compiled = append(s.compiled, c)
}

// Lookup returns the triple of the first entry whose patterns cover desc1
// and desc2. Absent descriptions are passed as "".
func (s *MappingStore) Lookup(desc1, desc2 string) (models.Triple, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, c := range s.compiled {
		if !c.desc1.Match(desc1) {
			continue
		}
		if c.desc2 != nil && !c.desc2.Match(desc2) {
			continue
		}
		return s.entries[i].Triple(), true
	}
	return models.Triple{}, false
}

// Append adds entry after all existing entries and rewrites the backing
// file. The entry is only visible to Lookup once it has been persisted.
func (s *MappingStore) Append(entry models.MappingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.MappingEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, entry)

	if err := writeCSVFile(s.path, next); err != nil {
		s.logger.WithError(err).Error("Failed to persist mapping",
			logging.Field{Key: logging.FieldFile, Value: s.path},
			logging.Field{Key: logging.FieldDesc1, Value: entry.Description1})
		return err
	}

	s.add(entry)
	s.logger.Info("Learned new mapping",
		logging.Field{Key: logging.FieldDesc1, Value: entry.Description1},
		logging.Field{Key: logging.FieldDesc2, Value: entry.Description2},
		logging.Field{Key: logging.FieldCategory, Value: entry.Category},
		logging.Field{Key: logging.FieldSubcategory, Value: entry.Subcategory},
		logging.Field{Key: logging.FieldNote, Value: entry.Note})
	return nil
}

// Entries returns a copy of the entries in match order.
func (s *MappingStore) Entries() []models.MappingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MappingEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *MappingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Path returns the backing file.
func (s *MappingStore) Path() string {
	return s.path
}
