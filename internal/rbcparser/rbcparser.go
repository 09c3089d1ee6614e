// Package rbcparser reads RBC online-banking CSV exports into pipeline
// transactions. Account numbers are translated to ledger account names on
// the way in; the USD$ column is ignored.
package rbcparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/currencyutils"
	"rbc2mm/internal/dateutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/gocarina/gocsv"
)

const parserName = "rbc"

// ExpectedFormat describes the input layout in error messages.
const ExpectedFormat = "RBC CSV (Account Type, Account Number, Transaction Date, Cheque Number, Description 1, Description 2, CAD$, USD$)"

// RequiredColumns are the headers a file must carry to be parsed.
var RequiredColumns = []string{
	"Account Type", "Account Number", "Transaction Date",
	"Description 1", "Description 2", "CAD$",
}

// RBCCSVRow represents a single row in an RBC CSV export
// It uses struct tags for gocsv unmarshaling
type RBCCSVRow struct {
	AccountType     string `csv:"Account Type"`
	AccountNumber   string `csv:"Account Number"`
	TransactionDate string `csv:"Transaction Date"`
	ChequeNumber    string `csv:"Cheque Number"`
	Description1    string `csv:"Description 1"`
	Description2    string `csv:"Description 2"`
	CAD             string `csv:"CAD$"`
	USD             string `csv:"USD$"`
}

// AccountTranslator maps raw account numbers to ledger names.
type AccountTranslator interface {
	Translate(raw string) string
}

// Parser converts RBC exports to transactions.
type Parser struct {
	accounts AccountTranslator
	logger   logging.Logger
}

// NewParser creates a parser. A nil translator keeps raw account numbers.
func NewParser(accounts AccountTranslator, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{accounts: accounts, logger: logger}
}

// ParseFile parses the export at path.
func (p *Parser) ParseFile(path string) ([]models.Transaction, error) {
	p.logger.Info("Parsing RBC CSV file", logging.Field{Key: logging.FieldFile, Value: path})

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading RBC CSV: %w", err)
	}
	txs, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		var formatErr *caterror.InvalidFormatError
		if errors.As(err, &formatErr) {
			formatErr.FilePath = path
		}
		return nil, err
	}
	return txs, nil
}

// Parse reads an export from r. Rows without a CAD$ amount are skipped.
// An unreadable date or amount fails the whole parse.
func (p *Parser) Parse(r io.Reader) ([]models.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading RBC CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &caterror.InvalidFormatError{ExpectedFormat: ExpectedFormat, Msg: "file is empty"}
	}

	header, err := newReader(data).Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &caterror.InvalidFormatError{
			ExpectedFormat: ExpectedFormat,
			Msg:            "missing column(s) " + strings.Join(missing, ", "),
		}
	}

	var rows []RBCCSVRow
	if err := gocsv.UnmarshalCSV(newReader(data), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("error parsing RBC CSV: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.CAD) == "" {
			p.logger.Warn("Skipping row without CAD$ amount",
				logging.Field{Key: logging.FieldRow, Value: i + 1},
				logging.Field{Key: logging.FieldDesc1, Value: row.Description1})
			continue
		}

		tx, err := p.convertRow(row, i+1)
		if err != nil {
			p.logger.WithError(err).Error("Failed to convert RBC row")
			return nil, err
		}
		tx.Row = len(transactions)
		transactions = append(transactions, tx)
	}

	p.logger.Info("Successfully parsed RBC CSV",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})
	return transactions, nil
}

// convertRow converts an RBCCSVRow to a Transaction. line is the 1-based
// data row number used in errors.
func (p *Parser) convertRow(row RBCCSVRow, line int) (models.Transaction, error) {
	date, err := dateutils.ParseBankDate(row.TransactionDate)
	if err != nil {
		return models.Transaction{}, &caterror.ParseError{
			Parser: parserName, Row: line, Field: "Transaction Date", Value: row.TransactionDate, Err: err,
		}
	}

	amount, err := currencyutils.ParseAmount(row.CAD)
	if err != nil {
		return models.Transaction{}, &caterror.ParseError{
			Parser: parserName, Row: line, Field: "CAD$", Value: row.CAD, Err: err,
		}
	}

	account := strings.TrimSpace(row.AccountNumber)
	if p.accounts != nil {
		account = p.accounts.Translate(account)
	}

	return models.Transaction{
		Date:        date,
		AccountType: strings.TrimSpace(row.AccountType),
		Account:     account,
		Desc1:       strings.TrimSpace(row.Description1),
		Desc2:       models.StringPtr(strings.TrimSpace(row.Description2)),
		Amount:      amount,
	}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newReader tolerates the ragged rows and trailing commas RBC exports have.
func newReader(data []byte) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// ValidateFormat reports whether the file at path has the RBC header.
func ValidateFormat(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening file for validation: %w", err)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("error reading CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	return len(missingColumns(header)) == 0, nil
}
