package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"Thousand separator", "1,234.56", "1234.56", false},
		{"Quoted thousands negative", "-12,345.00", "-12345", false},
		{"Dollar sign", "$123.45", "123.45", false},
		{"Currency code", "CAD 123.45", "123.45", false},
		{"Parentheses", "(45.00)", "-45", false},
		{"Spaces", "  123.45  ", "123.45", false},
		{"Empty", "", "", true},
		{"Malformed decimal", "123.45.67", "", true},
		{"Non-numeric", "abc", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			expected := decimal.RequireFromString(tc.expected)
			assert.True(t, expected.Equal(result), "Expected %s but got %s", expected, result)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.30 CAD", FormatAmount(decimal.RequireFromString("12.3"), "cad"))
	assert.Equal(t, "-5.00", FormatAmount(decimal.NewFromInt(-5), ""))
}
