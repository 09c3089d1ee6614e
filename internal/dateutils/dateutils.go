// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO    = "2006-01-02"
	DateLayoutUS     = "01/02/2006"
	DateLayoutLedger = "2006/01/02"
	DateLayoutFull   = "2006-01-02 15:04:05"
)

// bankFormats are tried in order for bank export dates (month first).
var bankFormats = []string{
	DateLayoutUS,
	"1/2/2006",
	DateLayoutISO,
}

// ledgerFormats are tried in order for ledger dates.
var ledgerFormats = []string{
	DateLayoutLedger,
	"2006/1/2",
	DateLayoutISO,
	DateLayoutFull,
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseBankDate parses a bank export date (MM/DD/YYYY).
func ParseBankDate(dateStr string) (time.Time, error) {
	return parseWith(dateStr, bankFormats)
}

// ParseLedgerDate parses a ledger date (YYYY/MM/DD).
func ParseLedgerDate(dateStr string) (time.Time, error) {
	return parseWith(dateStr, ledgerFormats)
}

func parseWith(dateStr string, formats []string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, format := range formats {
		if t, err := time.Parse(format, clean); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToLedgerDate formats a date as YYYY/MM/DD
func ToLedgerDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutLedger)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// FromEpochMillis converts a millisecond Unix timestamp to a UTC time.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey returns a comparable key for the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format(DateLayoutISO)
}
