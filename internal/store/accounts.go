package store

import (
	"strings"

	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// AccountTranslator maps raw bank account numbers to ledger account names.
type AccountTranslator struct {
	names  map[string]string
	warned map[string]bool
	logger logging.Logger
}

// LoadAccountTranslator reads an RBCAccount,MoneyManagerAccount CSV.
func LoadAccountTranslator(path string, logger logging.Logger) (*AccountTranslator, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	rows, err := readCSVFile[models.AccountTranslation](path, "RBCAccount", "MoneyManagerAccount")
	if err != nil {
		logger.WithError(err).Error("Failed to load account translations",
			logging.Field{Key: logging.FieldFile, Value: path})
		return nil, err
	}
	return NewAccountTranslator(rows, logger), nil
}

// NewAccountTranslator builds a translator from rows already in memory.
// When a raw number appears twice the first row wins.
func NewAccountTranslator(rows []models.AccountTranslation, logger logging.Logger) *AccountTranslator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	names := make(map[string]string, len(rows))
	for _, r := range rows {
		key := strings.TrimSpace(r.RBCAccount)
		if key == "" {
			continue
		}
		if _, ok := names[key]; !ok {
			names[key] = strings.TrimSpace(r.MoneyManagerAccount)
		}
	}
	return &AccountTranslator{names: names, warned: map[string]bool{}, logger: logger}
}

// Translate returns the ledger name for raw. Unknown numbers pass through
// unchanged and are reported once.
func (a *AccountTranslator) Translate(raw string) string {
	key := strings.TrimSpace(raw)
	if name, ok := a.names[key]; ok {
		return name
	}
	if !a.warned[key] {
		a.warned[key] = true
		a.logger.Warn("No account translation, keeping raw account number",
			logging.Field{Key: logging.FieldAccount, Value: key})
	}
	return key
}

// Len returns the number of known accounts.
func (a *AccountTranslator) Len() int {
	return len(a.names)
}
