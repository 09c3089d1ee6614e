package rbcparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
	"rbc2mm/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Account Type,Account Number,Transaction Date,Cheque Number,Description 1,Description 2,CAD$,USD$\n"

func translator() *store.AccountTranslator {
	return store.NewAccountTranslator([]models.AccountTranslation{
		{RBCAccount: "01234-5678901", MoneyManagerAccount: "Chequing"},
		{RBCAccount: "4510123412341234", MoneyManagerAccount: "Visa"},
	}, logging.NewMockLogger())
}

func TestParse(t *testing.T) {
	input := header +
		"Chequing,01234-5678901,1/15/2024,,HAPPY BURGER #1234 TORONTO ON,,-12.34,\n" +
		"Savings,99999,01/15/2024,,Online Banking transfer,TFSA,100.00,\n" +
		"Visa,4510123412341234,01/16/2024,,\"AMAZON, INC\",,\"-1,234.50\",\n"

	p := NewParser(translator(), logging.NewMockLogger())
	txs, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, 0, txs[0].Row)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, "Chequing", txs[0].Account)
	assert.Equal(t, "Chequing", txs[0].AccountType)
	assert.Equal(t, "HAPPY BURGER #1234 TORONTO ON", txs[0].Desc1)
	assert.Nil(t, txs[0].Desc2)
	assert.True(t, decimal.RequireFromString("-12.34").Equal(txs[0].Amount))
	assert.Empty(t, txs[0].Tag, "tagging is left to the batch driver")

	assert.Equal(t, "99999", txs[1].Account, "unknown account numbers pass through")
	require.NotNil(t, txs[1].Desc2)
	assert.Equal(t, "TFSA", *txs[1].Desc2)

	assert.Equal(t, "Visa", txs[2].Account)
	assert.Equal(t, "AMAZON, INC", txs[2].Desc1)
	assert.True(t, decimal.RequireFromString("-1234.50").Equal(txs[2].Amount))
}

func TestParse_SkipsRowsWithoutCAD(t *testing.T) {
	input := header +
		"Visa,4510123412341234,01/16/2024,,US PURCHASE,,,-20.00\n" +
		"Visa,4510123412341234,01/16/2024,,CDN PURCHASE,,-5.00,\n"

	logger := logging.NewMockLogger()
	txs, err := NewParser(translator(), logger).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "CDN PURCHASE", txs[0].Desc1)
	assert.Equal(t, 0, txs[0].Row)
	assert.True(t, logger.HasEntry("WARN", "Skipping row without CAD$ amount"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "empty",
			input: "",
			check: func(t *testing.T, err error) {
				var formatErr *caterror.InvalidFormatError
				assert.True(t, errors.As(err, &formatErr))
			},
		},
		{
			name:  "wrong header",
			input: "Date,Amount\n2024-01-01,5\n",
			check: func(t *testing.T, err error) {
				var formatErr *caterror.InvalidFormatError
				require.True(t, errors.As(err, &formatErr))
				assert.Contains(t, formatErr.Msg, "Description 1")
			},
		},
		{
			name:  "bad date",
			input: header + "Chequing,1,15/01/2024,,X,,-1.00,\n",
			check: func(t *testing.T, err error) {
				var parseErr *caterror.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "Transaction Date", parseErr.Field)
				assert.Equal(t, 1, parseErr.Row)
			},
		},
		{
			name:  "bad amount",
			input: header + "Chequing,1,01/15/2024,,X,,abc,\n",
			check: func(t *testing.T, err error) {
				var parseErr *caterror.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "CAD$", parseErr.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil, logging.NewMockLogger()).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	txs, err := NewParser(nil, logging.NewMockLogger()).Parse(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestParseFileAndValidateFormat(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "Funds.csv")
	require.NoError(t, os.WriteFile(good, []byte("\xEF\xBB\xBF"+header+"Chequing,01234-5678901,01/15/2024,,PAYROLL,,2500.00,\n"), 0600))
	bad := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2\n"), 0600))

	ok, err := ValidateFormat(good)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateFormat(bad)
	require.NoError(t, err)
	assert.False(t, ok)

	txs, err := NewParser(translator(), logging.NewMockLogger()).ParseFile(good)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Chequing", txs[0].Account)

	_, err = NewParser(nil, logging.NewMockLogger()).ParseFile(bad)
	var formatErr *caterror.InvalidFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, bad, formatErr.FilePath)
}

func TestSummarizeAccounts(t *testing.T) {
	txs := []models.Transaction{
		{Account: "Chequing", AccountType: "Chequing"},
		{Account: "Visa", AccountType: "Visa"},
		{Account: "Chequing", AccountType: "Chequing"},
	}

	summary := SummarizeAccounts(txs)
	assert.Equal(t, []AccountSummary{
		{Account: "Chequing", AccountType: "Chequing", Count: 2},
		{Account: "Visa", AccountType: "Visa", Count: 1},
	}, summary)

	logger := logging.NewMockLogger()
	LogAccountSummary(logger, summary)
	assert.Len(t, logger.GetEntriesByLevel("INFO"), 2)
}
