package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		wantTag    Tag
		wantAmount string
	}{
		{"positive is income", "250.00", TagIncome, "250"},
		{"negative is expense", "-12.34", TagExpense, "12.34"},
		{"zero is expense", "0", TagExpense, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Amount: decimal.RequireFromString(tt.amount)}
			tx.Normalize()
			assert.Equal(t, tt.wantTag, tx.Tag)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(tx.Amount))

			tx.Normalize()
			assert.Equal(t, tt.wantTag, tx.Tag)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(tx.Amount))
		})
	}
}

func TestTransaction_MarkNeedsReview(t *testing.T) {
	tx := Transaction{Category: "Food", Subcategory: "Lunch", Note: "X"}
	tx.MarkNeedsReview()

	assert.Equal(t, CategoryOther, tx.Category)
	assert.Empty(t, tx.Subcategory)
	assert.Empty(t, tx.Note)
	assert.True(t, tx.NeedsReview)
	assert.Equal(t, NeedsReviewMarker, tx.Description)
}

func TestTransaction_Desc2Text(t *testing.T) {
	tx := Transaction{}
	assert.Equal(t, "", tx.Desc2Text())

	tx.Desc2 = StringPtr("TORONTO")
	assert.Equal(t, "TORONTO", tx.Desc2Text())
	assert.Nil(t, StringPtr(""))
}

func TestCategorizationStats_Record(t *testing.T) {
	var stats CategorizationStats
	stats.Record(SourceMapping, false)
	stats.Record(SourceMapping, false)
	stats.Record(SourceAI, false)
	stats.Record(SourceManual, true)
	stats.Record(SourcePlaceholder, false)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.FromMapping)
	assert.Equal(t, 2, stats.FromFallback)
	assert.Equal(t, 1, stats.Learned)
	assert.Equal(t, 1, stats.Placeholders)
	assert.InDelta(t, 40.0, stats.GetMappingRate(), 0.001)
	assert.Equal(t, 0.0, CategorizationStats{}.GetMappingRate())
}
