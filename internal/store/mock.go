package store

import (
	"sync"

	"rbc2mm/internal/models"
	"rbc2mm/internal/pattern"
)

// MockMappingStore is an in-memory mapping store for testing. It applies the
// same first-match rules as MappingStore without touching the filesystem.
type MockMappingStore struct {
	mu       sync.Mutex
	Mappings []models.MappingEntry

	// AppendError makes Append fail without storing anything.
	AppendError error

	LookupCalls int
	Appended    []models.MappingEntry
}

// Lookup returns the first mapping covering desc1 and desc2.
func (m *MockMappingStore) Lookup(desc1, desc2 string) (models.Triple, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++

	for _, e := range m.Mappings {
		if !pattern.Match(e.Description1, desc1) {
			continue
		}
		if e.Description2 != "" && !pattern.Match(e.Description2, desc2) {
			continue
		}
		return e.Triple(), true
	}
	return models.Triple{}, false
}

// Append records entry at the end of the mappings.
func (m *MockMappingStore) Append(entry models.MappingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendError != nil {
		return m.AppendError
	}
	m.Mappings = append(m.Mappings, entry)
	m.Appended = append(m.Appended, entry)
	return nil
}
