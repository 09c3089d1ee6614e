// Package currencyutils provides common currency and decimal operations used throughout the application.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = regexp.MustCompile(`[$\s]|CAD|USD`)

// ParseAmount parses a bank amount such as "-12.34", "$1,234.56" or
// "(45.00)". Commas are thousands separators; parentheses mean negative.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency markers and thousands separators so the
// result can be parsed by decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	s := symbols.ReplaceAllString(strings.TrimSpace(amountStr), "")
	s = strings.ReplaceAll(s, ",", "")

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	return s
}

// FormatAmount formats an amount with two decimals and the currency code,
// e.g. "12.34 CAD".
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	if currency == "" {
		return formatted
	}
	return formatted + " " + strings.ToUpper(currency)
}
