package container

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rbc2mm/internal/config"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct{ reply string }

func (s stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.reply, nil
}

func writeFixtures(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"descriptions.csv": "Description1,Description2,Category,Subcategory,Note\nTIM HORTONS*,,Food,Coffee,Tim Hortons\n",
		"categories.csv":   "Category,Subcategory\nFood,Coffee\nFood,Lunch\n",
		"accounts.csv":     "RBCAccount,MoneyManagerAccount\n01234-5678901,Chequing\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}

	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Files.Mappings = filepath.Join(dir, "descriptions.csv")
	cfg.Files.Categories = filepath.Join(dir, "categories.csv")
	cfg.Files.Accounts = filepath.Join(dir, "accounts.csv")
	cfg.AI.MaxAttempts = 1
	cfg.AI.TimeoutSeconds = 5
	cfg.Categorization.Fallback = config.FallbackAI
	cfg.Categorization.OnFailure = config.OnFailureAbort
	cfg.Categorization.Currency = "CAD"
	cfg.Reconcile.Enabled = true
	cfg.Reconcile.Tolerance = 0.1
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	assert.ErrorContains(t, err, "configuration cannot be nil")
}

func TestNewContainer_WiresPipeline(t *testing.T) {
	cfg := writeFixtures(t)
	logger := logging.NewMockLogger()

	c, err := NewContainerWithOptions(context.Background(), cfg, Options{
		Logger:   logger,
		AIClient: stubClient{reply: "Food\nLunch\nHappy Burger"},
	})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 1, c.GetMappingStore().Len())
	assert.Equal(t, 2, c.GetTaxonomy().Len())
	assert.Equal(t, 1, c.GetAccounts().Len())
	assert.Equal(t, "ai", c.GetResolver().FallbackName())
	assert.Same(t, cfg, c.GetConfig())

	csv := "Account Type,Account Number,Transaction Date,Cheque Number,Description 1,Description 2,CAD$,USD$\n" +
		"Chequing,01234-5678901,1/15/2024,,HAPPY BURGER #1234 TORONTO ON,,-12.34,\n" +
		"Chequing,01234-5678901,1/15/2024,,TIM HORTONS #99,,-2.10,\n"
	txs, err := c.GetParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	report, err := c.GetDriver().Run(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, report.Transactions, 2)

	first := report.Transactions[0]
	assert.Equal(t, "Chequing", first.Account)
	assert.Equal(t, models.Triple{Category: "Food", Subcategory: "Lunch", Note: "Happy Burger"},
		models.Triple{Category: first.Category, Subcategory: first.Subcategory, Note: first.Note})
	assert.True(t, decimal.RequireFromString("12.34").Equal(first.Amount))
	assert.Equal(t, "Coffee", report.Transactions[1].Subcategory)
}

func TestNewContainer_AIWithoutKeyWarns(t *testing.T) {
	cfg := writeFixtures(t)
	logger := logging.NewMockLogger()

	c, err := NewContainerWithOptions(context.Background(), cfg, Options{Logger: logger})
	require.NoError(t, err)
	assert.Nil(t, c.GetAIClient())
	assert.True(t, logger.HasEntry("WARN", "AI fallback selected but GEMINI_API_KEY is not set; unmatched transactions will fail"))
}

func TestNewContainer_FallbackSelection(t *testing.T) {
	for _, name := range []string{config.FallbackManual, config.FallbackNone} {
		t.Run(name, func(t *testing.T) {
			cfg := writeFixtures(t)
			cfg.Categorization.Fallback = name

			c, err := NewContainerWithOptions(context.Background(), cfg, Options{
				Logger: logging.NewMockLogger(),
				Stdin:  strings.NewReader(""),
				Stdout: &strings.Builder{},
			})
			require.NoError(t, err)
			assert.Equal(t, name, c.GetResolver().FallbackName())
		})
	}

	cfg := writeFixtures(t)
	cfg.Categorization.Fallback = "oracle"
	_, err := NewContainerWithOptions(context.Background(), cfg, Options{Logger: logging.NewMockLogger()})
	assert.ErrorContains(t, err, "unknown fallback")
}

func TestNewContainer_MissingMappingStoreFails(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.Files.Mappings = filepath.Join(t.TempDir(), "missing.csv")

	_, err := NewContainerWithOptions(context.Background(), cfg, Options{Logger: logging.NewMockLogger()})
	assert.Error(t, err)
}

func TestNewContainer_MissingAccountsKeepsRawNumbers(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.Files.Accounts = filepath.Join(t.TempDir(), "missing.csv")
	logger := logging.NewMockLogger()

	c, err := NewContainerWithOptions(context.Background(), cfg, Options{
		Logger:   logger,
		AIClient: stubClient{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.GetAccounts().Len())
	assert.True(t, logger.HasEntry("WARN", "Account translation file not found, keeping raw account numbers"))
}
