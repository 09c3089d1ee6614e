package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBankDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"1/5/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), false},
		{"  03/02/2023 ", time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), false},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"15/01/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBankDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseLedgerDate(t *testing.T) {
	got, err := ParseLedgerDate("2024/01/15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ToISODate(got))

	got, err = ParseLedgerDate("2024-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ToISODate(got))

	_, err = ParseLedgerDate("January")
	assert.Error(t, err)
}

func TestToLedgerDate(t *testing.T) {
	assert.Equal(t, "2024/01/15", ToLedgerDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", ToLedgerDate(time.Time{}))
}

func TestFromEpochMillis(t *testing.T) {
	got := FromEpochMillis(1705276800000)
	assert.Equal(t, "2024-01-15", ToISODate(got))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	c := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
	assert.Equal(t, DayKey(a), DayKey(b))
}

func TestCleanDateString(t *testing.T) {
	assert.Equal(t, "01/15/2024", CleanDateString("  01/15/2024\t"))
	assert.Equal(t, "Jan 2 2024", CleanDateString("Jan   2  2024"))
}
