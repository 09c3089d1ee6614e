// Package store provides the file-backed stores the categorizer reads and
// learns into: the mapping store, the category taxonomy and the account
// translation table.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"rbc2mm/internal/caterror"

	"github.com/gocarina/gocsv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSVFile loads a headered CSV file into rows. A zero-byte or
// header-only file yields no rows. Missing files, unreadable files, files
// lacking one of the required columns and malformed CSV all fail with a
// StoreError.
func readCSVFile[T any](path string, required ...string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &caterror.StoreError{Op: "load", Path: path, Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, &caterror.StoreError{Op: "load", Path: path, Err: fmt.Errorf("reading header: %w", err)}
	}
	if err := checkHeader(header, required); err != nil {
		return nil, &caterror.StoreError{Op: "load", Path: path, Err: err}
	}

	var rows []T
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []T{}, nil
		}
		return nil, &caterror.StoreError{Op: "load", Path: path, Err: err}
	}
	return rows, nil
}

// writeCSVFile replaces path with rows, header first.
func writeCSVFile[T any](path string, rows []T) error {
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return &caterror.StoreError{Op: "persist", Path: path, Err: err}
	}
	if err := writeAtomic(path, data); err != nil {
		return &caterror.StoreError{Op: "persist", Path: path, Err: err}
	}
	return nil
}

func checkHeader(header, required []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing column(s) %s", strings.Join(missing, ", "))
	}
	return nil
}
