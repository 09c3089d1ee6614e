// Package ledger reads and writes the Money Manager import layout and merges
// a categorized batch into the historical ledger.
package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rbc2mm/internal/dateutils"
	"rbc2mm/internal/fileutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Row is one line of the ledger file, columns in Money Manager order.
type Row struct {
	Date          string `csv:"Date"`
	Account       string `csv:"Account"`
	Category      string `csv:"Category"`
	Subcategory   string `csv:"Subcategory"`
	Note          string `csv:"Note"`
	CAD           string `csv:"CAD"`
	IncomeExpense string `csv:"Income/Expense"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Currency      string `csv:"Currency"`
}

// FromTransaction renders a categorized transaction as a ledger row.
func FromTransaction(tx models.Transaction) Row {
	amount := tx.Amount.StringFixed(2)
	currency := tx.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return Row{
		Date:          dateutils.ToLedgerDate(tx.Date),
		Account:       tx.Account,
		Category:      tx.Category,
		Subcategory:   tx.Subcategory,
		Note:          tx.Note,
		CAD:           amount,
		IncomeExpense: string(tx.Tag),
		Description:   tx.Description,
		Amount:        amount,
		Currency:      currency,
	}
}

// ToTransaction parses a ledger row back into a transaction.
func (r Row) ToTransaction() (models.Transaction, error) {
	date, err := dateutils.ParseLedgerDate(r.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}

	raw := strings.TrimSpace(r.Amount)
	if raw == "" {
		raw = strings.TrimSpace(r.CAD)
	}
	amount := decimal.Zero
	if raw != "" {
		amount, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
	}

	return models.Transaction{
		Date:        date,
		Account:     r.Account,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Note:        r.Note,
		Amount:      amount.Abs(),
		Tag:         models.Tag(r.IncomeExpense),
		Description: r.Description,
		Currency:    r.Currency,
		NeedsReview: r.Description == models.NeedsReviewMarker,
	}, nil
}

// DelimiterFor returns the configured delimiter, or tab for .tsv paths and
// comma otherwise.
func DelimiterFor(path, configured string) rune {
	if configured != "" {
		if configured == `\t` {
			return '\t'
		}
		return []rune(configured)[0]
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Write renders txs to w with the given delimiter.
func Write(w io.Writer, txs []models.Transaction, delimiter rune) error {
	rows := make([]Row, len(txs))
	for i, tx := range txs {
		rows[i] = FromTransaction(tx)
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteFile writes txs to path, replacing it atomically.
func WriteFile(path string, txs []models.Transaction, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}

	var buf bytes.Buffer
	if err := Write(&buf, txs, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal ledger rows")
		return err
	}
	if err := fileutils.WriteFileAtomic(path, buf.Bytes(), models.PermissionDataFile); err != nil {
		logger.WithError(err).Error("Failed to write ledger file",
			logging.Field{Key: logging.FieldOutputFile, Value: path})
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	logger.Info("Wrote ledger file",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return nil
}

// Read parses a ledger from r.
func Read(r io.Reader, delimiter rune) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var rows []Row
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("error parsing ledger: %w", err)
	}

	txs := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := row.ToTransaction()
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+1, err)
		}
		tx.Row = i
		txs = append(txs, tx)
	}
	return txs, nil
}

// ReadFile parses the ledger at path. A missing file is an empty ledger.
func ReadFile(path string, delimiter rune, logger logging.Logger) ([]models.Transaction, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("History ledger not found, starting empty",
				logging.Field{Key: logging.FieldFile, Value: path})
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("error opening ledger: %w", err)
	}
	defer file.Close()

	txs, err := Read(file, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Read history ledger",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return txs, nil
}

type rowKey struct {
	date, account, amount, tag, category, note string
}

func keyOf(tx models.Transaction) rowKey {
	return rowKey{
		date:     dateutils.DayKey(tx.Date),
		account:  tx.Account,
		amount:   tx.Amount.StringFixed(2),
		tag:      string(tx.Tag),
		category: tx.Category,
		note:     tx.Note,
	}
}

// Merge appends batch to history, sorts stably by date and renumbers rows.
// History rows are always kept. A batch row is dropped when history already
// holds an unclaimed row with the same date, account, amount, tag, category
// and note, so N identical batch rows against M identical history rows keep
// max(N-M, 0) of them. It returns the merged ledger and the number of batch
// rows dropped.
func Merge(history, batch []models.Transaction) ([]models.Transaction, int) {
	inHistory := make(map[rowKey]int, len(history))
	merged := make([]models.Transaction, 0, len(history)+len(batch))
	for _, tx := range history {
		inHistory[keyOf(tx)]++
		merged = append(merged, tx)
	}

	dropped := 0
	for _, tx := range batch {
		k := keyOf(tx)
		if inHistory[k] > 0 {
			inHistory[k]--
			dropped++
			continue
		}
		merged = append(merged, tx)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	for i := range merged {
		merged[i].Row = i
	}
	return merged, dropped
}
