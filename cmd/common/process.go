// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rbc2mm/internal/batch"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
	"rbc2mm/internal/rbcparser"
	"rbc2mm/internal/validation"
)

// CollectInputs expands the given paths into a list of CSV files. Files are
// kept as given; directories contribute their *.csv entries in name order.
func CollectInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		if err := validation.IsValidPath(p); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read input directory: %w", err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	return files, nil
}

// LoadTransactions validates (optionally) and parses every input file into
// one batch.
func LoadTransactions(p *rbcparser.Parser, agg *batch.Aggregator, files []string, validate bool, log logging.Logger) ([]models.Transaction, error) {
	if validate {
		log.Info("Validating format...")
		for _, f := range files {
			valid, err := rbcparser.ValidateFormat(f)
			if err != nil {
				return nil, fmt.Errorf("error validating %s: %w", f, err)
			}
			if !valid {
				return nil, fmt.Errorf("%s is not a valid %s file", f, rbcparser.ExpectedFormat)
			}
		}
		log.Info("Validation successful.")
	}

	return agg.Aggregate(files, p.ParseFile)
}

// WarnIfExposed logs a warning when a secret file (OAuth token, client
// secret) is readable by other users.
func WarnIfExposed(path string, log logging.Logger) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
		log.WithError(err).Warn("Secret file is readable by other users",
			logging.Field{Key: logging.FieldFile, Value: path})
	}
}
