package convert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rbc2mm/internal/batch"
	"rbc2mm/internal/config"
	"rbc2mm/internal/ledger"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCommand_Metadata(t *testing.T) {
	assert.Equal(t, "convert [files...]", Cmd.Use)
	assert.NotNil(t, Cmd.Run)
	for _, name := range []string{"history", "no-history", "upload"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestMergeHistory(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	row := models.Transaction{
		Date: day, Account: "Chequing", Category: "Food",
		Amount: decimal.RequireFromString("5.00"), Tag: models.TagExpense, Currency: "CAD",
	}

	path := filepath.Join(t.TempDir(), "Funds.tsv")
	logger := logging.NewMockLogger()
	require.NoError(t, ledger.WriteFile(path, []models.Transaction{row}, '\t', logger))

	next := row
	next.Date = day.AddDate(0, 0, 1)
	report := &batch.Report{Transactions: []models.Transaction{row, next}}

	cfg := &config.Config{}
	historyFile, noHistory = path, false
	t.Cleanup(func() { historyFile, noHistory = "", false })

	merged, err := mergeHistory(cfg, report, logger)
	require.NoError(t, err)
	assert.Len(t, merged, 2)

	noHistory = true
	merged, err = mergeHistory(cfg, report, logger)
	require.NoError(t, err)
	assert.Equal(t, report.Transactions, merged)
}

func TestMergeHistory_MissingFileStartsEmpty(t *testing.T) {
	cfg := &config.Config{}
	cfg.Files.History = filepath.Join(t.TempDir(), "none.tsv")
	report := &batch.Report{Transactions: []models.Transaction{{Account: "Chequing"}}}

	merged, err := mergeHistory(cfg, report, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Len(t, merged, 1)
	_, statErr := os.Stat(cfg.Files.History)
	assert.True(t, os.IsNotExist(statErr))
}
