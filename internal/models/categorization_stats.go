package models

import (
	"rbc2mm/internal/logging"
)

// CategorizationStats tracks how a batch was categorized.
type CategorizationStats struct {
	Total        int // Total number of transactions processed
	FromMapping  int // Resolved by the mapping store
	FromFallback int // Resolved by the configured fallback
	Learned      int // Fallback answers appended to the store
	Placeholders int // Rows marked NEEDS REVIEW
	Transfers    int // Transfer pairs collapsed by reconciliation
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, runID string) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.Field{Key: logging.FieldRunID, Value: runID},
		logging.Field{Key: "total_transactions", Value: cs.Total},
		logging.Field{Key: "from_mapping", Value: cs.FromMapping},
		logging.Field{Key: "from_fallback", Value: cs.FromFallback},
		logging.Field{Key: "learned", Value: cs.Learned},
		logging.Field{Key: "placeholders", Value: cs.Placeholders},
		logging.Field{Key: "transfers", Value: cs.Transfers},
		logging.Field{Key: "mapping_rate", Value: cs.GetMappingRate()},
	)
}

// GetMappingRate returns the share of rows resolved by the store, in percent.
func (cs CategorizationStats) GetMappingRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.FromMapping) / float64(cs.Total) * 100.0
}

// Record counts one resolution by its source.
func (cs *CategorizationStats) Record(source string, learned bool) {
	cs.Total++
	switch source {
	case SourceMapping:
		cs.FromMapping++
	case SourcePlaceholder:
		cs.Placeholders++
	default:
		cs.FromFallback++
	}
	if learned {
		cs.Learned++
	}
}
