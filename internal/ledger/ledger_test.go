package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(day int, account, amount string, tag models.Tag, category string) models.Transaction {
	return models.Transaction{
		Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Account:  account,
		Amount:   decimal.RequireFromString(amount),
		Tag:      tag,
		Category: category,
		Currency: "CAD",
	}
}

func TestWrite(t *testing.T) {
	tx := sample(15, "Chequing", "12.3", models.TagExpense, "Food")
	tx.Subcategory = "Lunch"
	tx.Note = "Happy Burger"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []models.Transaction{tx}, ','))

	assert.Equal(t,
		"Date,Account,Category,Subcategory,Note,CAD,Income/Expense,Description,Amount,Currency\n"+
			"2024/01/15,Chequing,Food,Lunch,Happy Burger,12.30,Expense,,12.30,CAD\n",
		buf.String())
}

func TestWrite_TabDelimiterAndPlaceholder(t *testing.T) {
	tx := sample(15, "Visa", "5", models.TagExpense, "")
	tx.MarkNeedsReview()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []models.Transaction{tx}, '\t'))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"2024/01/15", "Visa", "Other", "", "", "5.00", "Expense", "NEEDS REVIEW", "5.00", "CAD"},
		strings.Split(lines[1], "\t"))
}

func TestDelimiterFor(t *testing.T) {
	assert.Equal(t, '\t', DelimiterFor("out.tsv", ""))
	assert.Equal(t, '\t', DelimiterFor("out.TSV", ""))
	assert.Equal(t, ',', DelimiterFor("out.csv", ""))
	assert.Equal(t, ';', DelimiterFor("out.tsv", ";"))
	assert.Equal(t, '\t', DelimiterFor("out.csv", `\t`))
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ledger.tsv")
	tx := sample(15, "Chequing", "250", models.TagIncome, "Salary")
	tx.Note = "Employer"
	review := sample(16, "Visa", "9.99", models.TagExpense, "")
	review.MarkNeedsReview()

	logger := logging.NewMockLogger()
	require.NoError(t, WriteFile(path, []models.Transaction{tx, review}, '\t', logger))
	assert.True(t, logger.HasEntry("INFO", "Wrote ledger file"))

	got, err := ReadFile(path, '\t', logger)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Salary", got[0].Category)
	assert.Equal(t, models.TagIncome, got[0].Tag)
	assert.True(t, decimal.RequireFromString("250").Equal(got[0].Amount))
	assert.Equal(t, 1, got[1].Row)
	assert.True(t, got[1].NeedsReview)
}

func TestReadFile_MissingIsEmpty(t *testing.T) {
	logger := logging.NewMockLogger()
	got, err := ReadFile(filepath.Join(t.TempDir(), "none.csv"), ',', logger)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, logger.HasEntry("WARN", "History ledger not found, starting empty"))
}

func TestRead_InvalidDate(t *testing.T) {
	input := "Date,Account,Category,Subcategory,Note,CAD,Income/Expense,Description,Amount,Currency\n" +
		"yesterday,Chequing,Food,,,1.00,Expense,,1.00,CAD\n"
	_, err := Read(strings.NewReader(input), ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger row 1")
}

func TestMerge(t *testing.T) {
	history := []models.Transaction{
		sample(10, "Chequing", "100", models.TagExpense, "Rent"),
		sample(20, "Visa", "5", models.TagExpense, "Food"),
	}
	batch := []models.Transaction{
		sample(20, "Visa", "5.00", models.TagExpense, "Food"), // duplicate of history
		sample(15, "Chequing", "42", models.TagExpense, "Bills"),
		sample(15, "Chequing", "42", models.TagExpense, "Bills"),
		sample(5, "Savings", "1", models.TagIncome, "Interest"),
	}

	merged, dropped := Merge(history, batch)
	assert.Equal(t, 1, dropped)
	require.Len(t, merged, 5)

	var categories []string
	for i, tx := range merged {
		categories = append(categories, tx.Category)
		assert.Equal(t, i, tx.Row)
	}
	assert.Equal(t, []string{"Interest", "Rent", "Bills", "Bills", "Food"}, categories)
}

func TestMerge_IdenticalRowsAreCountedNotCollapsed(t *testing.T) {
	coffee := sample(15, "Visa", "2.50", models.TagExpense, "Food")

	tests := []struct {
		name        string
		history     int
		batch       int
		wantMerged  int
		wantDropped int
	}{
		{name: "two in batch, none in history", history: 0, batch: 2, wantMerged: 2, wantDropped: 0},
		{name: "two in history, none in batch", history: 2, batch: 0, wantMerged: 2, wantDropped: 0},
		{name: "two in both", history: 2, batch: 2, wantMerged: 2, wantDropped: 2},
		{name: "three in batch, two in history", history: 2, batch: 3, wantMerged: 3, wantDropped: 2},
		{name: "one in batch, two in history", history: 2, batch: 1, wantMerged: 2, wantDropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var history, batch []models.Transaction
			for i := 0; i < tt.history; i++ {
				history = append(history, coffee)
			}
			for i := 0; i < tt.batch; i++ {
				batch = append(batch, coffee)
			}

			merged, dropped := Merge(history, batch)
			assert.Len(t, merged, tt.wantMerged)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestMerge_SameDayKeepsOrder(t *testing.T) {
	a := sample(15, "Chequing", "1", models.TagExpense, "A")
	b := sample(15, "Chequing", "2", models.TagExpense, "B")
	c := sample(15, "Chequing", "3", models.TagExpense, "C")

	merged, _ := Merge([]models.Transaction{a, b}, []models.Transaction{c})
	assert.Equal(t, "A", merged[0].Category)
	assert.Equal(t, "B", merged[1].Category)
	assert.Equal(t, "C", merged[2].Category)
}

func TestMerge_DifferentNoteIsNotDuplicate(t *testing.T) {
	a := sample(15, "Chequing", "1", models.TagExpense, "Food")
	b := a
	b.Note = "different"

	merged, dropped := Merge([]models.Transaction{a}, []models.Transaction{b})
	assert.Equal(t, 0, dropped)
	assert.Len(t, merged, 2)
}

func TestWriteFile_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := WriteFile(filepath.Join(blocker, "ledger.csv"), nil, ',', logging.NewMockLogger())
	assert.Error(t, err)
}
